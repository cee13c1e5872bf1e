package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
)

// System defines the prompt domain operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error)
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Active returns the active override for stage, or ErrNotFound.
	Active(ctx context.Context, stage Stage) (*Prompt, error)
	// Instructions returns the active override text, or the built-in default.
	Instructions(ctx context.Context, stage Stage) (string, error)
	// Spec returns the fixed output contract for stage.
	Spec(stage Stage) (string, error)
	// Locale is the language of the built-in prompts.
	Locale() Locale
}
