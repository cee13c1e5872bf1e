package profiles

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

// Store persists accounts and profiles.
type Store interface {
	Create(ctx context.Context, email, passwordHash string, fullName, username *string) (Profile, error)
	// Credentials finds an account by email or username and returns its
	// password hash.
	Credentials(ctx context.Context, identifier string) (Profile, string, error)
	Find(ctx context.Context, id uuid.UUID) (Profile, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (Profile, error)
	SetAvatar(ctx context.Context, id uuid.UUID, key *string) (Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) (Profile, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Profile], error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore returns a Store backed by the users and profiles tables.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Create(ctx context.Context, email, passwordHash string, fullName, username *string) (Profile, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Profile, error) {
		var id uuid.UUID
		err := tx.QueryRowContext(ctx,
			"INSERT INTO users(email, password_hash) VALUES ($1, $2) RETURNING id",
			email, passwordHash,
		).Scan(&id)
		if err != nil {
			return Profile{}, err
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO profiles(id, full_name, username) VALUES ($1, $2, $3)",
			id, fullName, username,
		); err != nil {
			return Profile{}, err
		}

		return s.find(ctx, tx, id)
	})
	if err != nil {
		return Profile{}, mapError(err)
	}
	return p, nil
}

func (s *postgresStore) Credentials(ctx context.Context, identifier string) (Profile, string, error) {
	q := fmt.Sprintf(
		"SELECT %s, u.password_hash FROM %s JOIN public.users u ON u.id = p.id WHERE lower(p.email) = lower($1) OR p.username = $1",
		projection.Columns(), projection.Table(),
	)

	var hash string
	p, err := repository.QueryOne(ctx, s.db, q, []any{strings.TrimSpace(identifier)}, func(sc repository.Scanner) (Profile, error) {
		return scanProfile(scannerWith(sc, &hash))
	})
	if err != nil {
		return Profile{}, "", mapError(err)
	}
	return p, hash, nil
}

func (s *postgresStore) Find(ctx context.Context, id uuid.UUID) (Profile, error) {
	p, err := s.find(ctx, s.db, id)
	if err != nil {
		return Profile{}, mapError(err)
	}
	return p, nil
}

func (s *postgresStore) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (Profile, error) {
	return s.exec(ctx, id,
		`UPDATE profiles
		SET full_name = COALESCE($2, full_name),
			username = COALESCE($3, username),
			updated_at = now()
		WHERE id = $1`,
		cmd.FullName, cmd.Username,
	)
}

func (s *postgresStore) SetAvatar(ctx context.Context, id uuid.UUID, key *string) (Profile, error) {
	return s.exec(ctx, id, "UPDATE profiles SET avatar_key = $2, updated_at = now() WHERE id = $1", key)
}

func (s *postgresStore) SetRole(ctx context.Context, id uuid.UUID, role string) (Profile, error) {
	return s.exec(ctx, id, "UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1", role)
}

func (s *postgresStore) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Profile], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Email", "FullName", "Username")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanProfile)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *postgresStore) exec(ctx context.Context, id uuid.UUID, stmt string, args ...any) (Profile, error) {
	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Profile, error) {
		if err := repository.ExecExpectOne(ctx, tx, stmt, append([]any{id}, args...)...); err != nil {
			return Profile{}, err
		}
		return s.find(ctx, tx, id)
	})
	if err != nil {
		return Profile{}, mapError(err)
	}
	return p, nil
}

func (s *postgresStore) find(ctx context.Context, q repository.Querier, id uuid.UUID) (Profile, error) {
	sqlStr, args := query.NewBuilder(projection).BuildSingle("ID", id)
	return repository.QueryOne(ctx, q, sqlStr, args, scanProfile)
}

// mapError resolves unique violations to the field that collided.
func mapError(err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicateEmail)
	if mapped == ErrDuplicateEmail {
		if name, ok := repository.Constraint(err); ok && strings.Contains(name, "username") {
			return ErrDuplicateUsername
		}
	}
	return mapped
}

type trailingScanner struct {
	repository.Scanner
	extra []any
}

func (t trailingScanner) Scan(dest ...any) error {
	return t.Scanner.Scan(append(dest, t.extra...)...)
}

// scannerWith appends extra destinations after the projection columns.
func scannerWith(s repository.Scanner, extra ...any) repository.Scanner {
	return trailingScanner{Scanner: s, extra: extra}
}
