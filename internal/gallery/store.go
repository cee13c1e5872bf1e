package gallery

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

// Store persists gallery rows.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error)
	Find(ctx context.Context, id uuid.UUID) (Item, error)
	Insert(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, item Item) (Item, error)
	// Delete removes the row and returns it so its blobs can be released.
	Delete(ctx context.Context, id uuid.UUID) (Item, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore returns a Store backed by the gallery table.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count gallery: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *postgresStore) Find(ctx context.Context, id uuid.UUID) (Item, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	g, err := repository.QueryOne(ctx, s.db, q, args, scanItem)
	if err != nil {
		return Item{}, repository.MapError(err, ErrNotFound, err)
	}
	return g, nil
}

func (s *postgresStore) Insert(ctx context.Context, item Item) (Item, error) {
	q := `
		INSERT INTO gallery(
			title, description, media_url, media_key, thumbnail_url, thumbnail_key,
			media_type, aspect_ratio, author_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		` + projection.Returning()

	args := []any{
		item.Title, item.Description, item.MediaURL, item.MediaKey, item.ThumbnailURL,
		item.ThumbnailKey, item.MediaType, item.AspectRatio, item.AuthorID,
	}

	g, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Item, error) {
		return repository.QueryOne(ctx, tx, q, args, scanItem)
	})
	if err != nil {
		return Item{}, fmt.Errorf("insert gallery item: %w", err)
	}
	return g, nil
}

func (s *postgresStore) Update(ctx context.Context, item Item) (Item, error) {
	q := `
		UPDATE gallery
		SET title = $2, description = $3, media_url = $4, media_key = $5,
			media_type = $6, aspect_ratio = $7
		WHERE id = $1
		` + projection.Returning()

	args := []any{
		item.ID, item.Title, item.Description, item.MediaURL, item.MediaKey,
		item.MediaType, item.AspectRatio,
	}

	g, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Item, error) {
		return repository.QueryOne(ctx, tx, q, args, scanItem)
	})
	if err != nil {
		return Item{}, repository.MapError(err, ErrNotFound, err)
	}
	return g, nil
}

func (s *postgresStore) Delete(ctx context.Context, id uuid.UUID) (Item, error) {
	q := "DELETE FROM gallery WHERE id = $1 " + projection.Returning()

	g, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Item, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanItem)
	})
	if err != nil {
		return Item{}, repository.MapError(err, ErrNotFound, err)
	}
	return g, nil
}
