package gallery

import (
	"context"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
)

// System defines the public contract for gallery operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Item], error)
	Find(ctx context.Context, id uuid.UUID) (*Item, error)
	Create(ctx context.Context, cmd CreateCommand) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
