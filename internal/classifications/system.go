package classifications

import (
	"context"

	"github.com/sapulidi/sapulidi/pkg/auth"
)

// System defines the classification domain operations.
type System interface {
	Handler() *Handler

	// Classify runs one attempt for user, who may be nil for anonymous
	// callers, and stores successful results for authenticated users.
	Classify(ctx context.Context, user *auth.Claims, cmd ClassifyCommand) (*Classification, error)

	History(ctx context.Context, userID, search string) ([]HistoryItem, error)
	Find(ctx context.Context, userID string, id int64) (*HistoryItem, error)
	Delete(ctx context.Context, userID string, id int64) error
}
