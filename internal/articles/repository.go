package articles

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an article repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "articles"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Article], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanArticle)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Article, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanArticle)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return &a, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Article, error) {
	if err := validate(cmd.Title, cmd.Content, cmd.Category, cmd.Image); err != nil {
		return nil, err
	}

	key, url, err := r.upload(ctx, cmd.AuthorID, cmd.Image)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO articles(title, content, category, image_url, image_key, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		` + projection.Returning()

	args := []any{cmd.Title, cmd.Content, cmd.Category, url, key, cmd.AuthorID}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Article, error) {
		return repository.QueryOne(ctx, tx, q, args, scanArticle)
	})
	if err != nil {
		r.removeBlob(ctx, key)
		return nil, fmt.Errorf("insert article: %w", err)
	}

	r.logger.Info("article created", "id", a.ID, "title", a.Title)
	return &a, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Article, error) {
	if err := validate(cmd.Title, cmd.Content, cmd.Category, cmd.Image); err != nil {
		return nil, err
	}

	current, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	key, url := current.ImageKey, current.ImageURL
	if cmd.Image != nil {
		if key, url, err = r.upload(ctx, current.AuthorID, cmd.Image); err != nil {
			return nil, err
		}
	}

	q := `
		UPDATE articles
		SET title = $2, content = $3, category = $4, image_url = $5, image_key = $6, updated_at = now()
		WHERE id = $1
		` + projection.Returning()

	args := []any{id, cmd.Title, cmd.Content, cmd.Category, url, key}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Article, error) {
		return repository.QueryOne(ctx, tx, q, args, scanArticle)
	})
	if err != nil {
		if cmd.Image != nil {
			r.removeBlob(ctx, key)
		}
		return nil, repository.MapError(err, ErrNotFound, err)
	}

	if cmd.Image != nil {
		r.removeBlob(ctx, current.ImageKey)
	}

	r.logger.Info("article updated", "id", id)
	return &a, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := "DELETE FROM articles WHERE id = $1 " + projection.Returning()

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Article, error) {
		return repository.QueryOne(ctx, tx, q, []any{id}, scanArticle)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, err)
	}

	r.removeBlob(ctx, a.ImageKey)

	r.logger.Info("article deleted", "id", id)
	return nil
}

func (r *repo) upload(ctx context.Context, author string, image *handlers.Upload) (*string, *string, error) {
	if image == nil {
		return nil, nil, nil
	}

	key := ImageKey(author, time.Now(), image.ContentType)
	if err := r.storage.Upload(ctx, key, bytes.NewReader(image.Data), image.ContentType); err != nil {
		return nil, nil, fmt.Errorf("upload article image: %w", err)
	}

	url := r.storage.URL(key)
	return &key, &url, nil
}

// removeBlob is best effort; a leftover cover never fails the request.
func (r *repo) removeBlob(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := r.storage.Delete(context.WithoutCancel(ctx), *key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("article image delete failed", "key", *key, "error", err)
	}
}
