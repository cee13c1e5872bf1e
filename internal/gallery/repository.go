package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sapulidi/sapulidi/pkg/handlers"
	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

type repo struct {
	store      Store
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the gallery system.
func New(
	store Store,
	blobs storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		store:      store,
		storage:    blobs,
		logger:     logger.With("system", "gallery"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)
	return r.store.List(ctx, page, filters)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Item, error) {
	g, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create uploads the media and thumbnail concurrently, then inserts the
// row. Any blob already written is removed when a later step fails.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Item, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	item := Item{
		Title:       cmd.Title,
		Description: cmd.Description,
		MediaKey:    MediaKey(cmd.AuthorID, now, cmd.Media.Filename),
		MediaType:   cmd.MediaType,
		AspectRatio: cmd.AspectRatio,
		AuthorID:    cmd.AuthorID,
	}
	item.MediaURL = r.storage.URL(item.MediaKey)

	if cmd.Thumbnail != nil {
		key := MediaKey(cmd.AuthorID, now, "thumb-"+cmd.Thumbnail.Filename)
		url := r.storage.URL(key)
		item.ThumbnailKey, item.ThumbnailURL = &key, &url
	}

	var mediaDone, thumbDone bool
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.upload(gctx, item.MediaKey, cmd.Media); err != nil {
			return fmt.Errorf("upload media: %w", err)
		}
		mediaDone = true
		return nil
	})

	if cmd.Thumbnail != nil {
		g.Go(func() error {
			if err := r.upload(gctx, *item.ThumbnailKey, cmd.Thumbnail); err != nil {
				return fmt.Errorf("upload thumbnail: %w", err)
			}
			thumbDone = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		var stored Item
		if stored, err = r.store.Insert(ctx, item); err == nil {
			r.logger.Info("gallery item created", "id", stored.ID, "media_type", stored.MediaType)
			return &stored, nil
		}
	}

	if mediaDone {
		r.removeBlob(ctx, item.MediaKey)
	}
	if thumbDone {
		r.removeBlob(ctx, *item.ThumbnailKey)
	}
	return nil, err
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Item, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	current, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current
	next.Title = cmd.Title
	next.Description = cmd.Description
	next.MediaType = cmd.MediaType
	next.AspectRatio = cmd.AspectRatio

	if cmd.Media != nil {
		next.MediaKey = MediaKey(current.AuthorID, time.Now(), cmd.Media.Filename)
		next.MediaURL = r.storage.URL(next.MediaKey)
		if err := r.upload(ctx, next.MediaKey, cmd.Media); err != nil {
			return nil, fmt.Errorf("upload media: %w", err)
		}
	}

	stored, err := r.store.Update(ctx, next)
	if err != nil {
		if cmd.Media != nil {
			r.removeBlob(ctx, next.MediaKey)
		}
		return nil, err
	}

	if cmd.Media != nil {
		r.removeBlob(ctx, current.MediaKey)
	}

	r.logger.Info("gallery item updated", "id", id)
	return &stored, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	g, err := r.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	r.removeBlob(ctx, g.MediaKey)
	if g.ThumbnailKey != nil {
		r.removeBlob(ctx, *g.ThumbnailKey)
	}

	r.logger.Info("gallery item deleted", "id", id)
	return nil
}

func (r *repo) upload(ctx context.Context, key string, u *handlers.Upload) error {
	return r.storage.Upload(ctx, key, bytes.NewReader(u.Data), u.ContentType)
}

func (r *repo) removeBlob(ctx context.Context, key string) {
	if err := r.storage.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("gallery blob delete failed", "key", key, "error", err)
	}
}
