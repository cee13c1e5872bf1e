package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

// Store persists history items. Reads and deletes are scoped to the owner.
type Store interface {
	Insert(ctx context.Context, item HistoryItem) (HistoryItem, error)
	// ListByUser returns the owner's items, newest first.
	ListByUser(ctx context.Context, userID string) ([]HistoryItem, error)
	FindByID(ctx context.Context, id int64, userID string) (HistoryItem, error)
	// DeleteByID hard-deletes an owned item and returns it. Items owned by
	// another user yield ErrNotFound.
	DeleteByID(ctx context.Context, id int64, userID string) (HistoryItem, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore returns a Store backed by the classification_history table.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Insert(ctx context.Context, item HistoryItem) (HistoryItem, error) {
	resultJSON, err := json.Marshal(item.Result)
	if err != nil {
		return HistoryItem{}, fmt.Errorf("marshal result: %w", err)
	}

	q := `
		INSERT INTO classification_history(
			user_id, image_url, image_key, result, accuracy, prompt_version
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		` + projection.Returning()

	args := []any{item.UserID, item.ImageURL, item.ImageKey, resultJSON, item.Accuracy, item.PromptVersion}

	stored, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (HistoryItem, error) {
		return repository.QueryOne(ctx, tx, q, args, scanHistoryItem)
	})
	if err != nil {
		return HistoryItem{}, fmt.Errorf("insert history item: %w", err)
	}
	return stored, nil
}

func (s *postgresStore) ListByUser(ctx context.Context, userID string) ([]HistoryItem, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		Build()

	items, err := repository.QueryMany(ctx, s.db, q, args, scanHistoryItem)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return items, nil
}

func (s *postgresStore) FindByID(ctx context.Context, id int64, userID string) (HistoryItem, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("UserID", userID).
		BuildSingle("ID", id)

	item, err := repository.QueryOne(ctx, s.db, q, args, scanHistoryItem)
	if err != nil {
		return HistoryItem{}, repository.MapError(err, ErrNotFound, err)
	}
	return item, nil
}

func (s *postgresStore) DeleteByID(ctx context.Context, id int64, userID string) (HistoryItem, error) {
	q := `
		DELETE FROM classification_history
		WHERE id = $1 AND user_id = $2
		` + projection.Returning()

	item, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (HistoryItem, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, userID}, scanHistoryItem)
	})
	if err != nil {
		return HistoryItem{}, repository.MapError(err, ErrNotFound, err)
	}
	return item, nil
}
