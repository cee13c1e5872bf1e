package chat

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

// Store persists chat messages per user.
type Store interface {
	Insert(ctx context.Context, userID, message, response string) (Message, error)
	// ListByUser returns the user's messages, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Message, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore returns a Store backed by the chat_history table.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Insert(ctx context.Context, userID, message, response string) (Message, error) {
	q := `
		INSERT INTO chat_history(user_id, message, response)
		VALUES ($1, $2, $3)
		` + projection.Returning()

	m, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Message, error) {
		return repository.QueryOne(ctx, tx, q, []any{userID, message, response}, scanMessage)
	})
	if err != nil {
		return Message{}, fmt.Errorf("insert chat message: %w", err)
	}
	return m, nil
}

func (s *postgresStore) ListByUser(ctx context.Context, userID string) ([]Message, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		Build()

	items, err := repository.QueryMany(ctx, s.db, q, args, scanMessage)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	return items, nil
}

func (s *postgresStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	n, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (int64, error) {
		return repository.ExecCount(ctx, tx, "DELETE FROM chat_history WHERE user_id = $1", userID)
	})
	if err != nil {
		return 0, fmt.Errorf("clear chat history: %w", err)
	}
	return n, nil
}
