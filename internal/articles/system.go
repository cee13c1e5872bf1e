package articles

import (
	"context"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
)

// System defines the public contract for article operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Article], error)

	Find(ctx context.Context, id uuid.UUID) (*Article, error)
	Create(ctx context.Context, cmd CreateCommand) (*Article, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
