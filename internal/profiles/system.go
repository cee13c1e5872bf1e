package profiles

import (
	"context"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/pagination"
)

// System defines account and profile operations.
type System interface {
	Handler() *Handler

	Signup(ctx context.Context, cmd SignupCommand) (*Session, error)
	Signin(ctx context.Context, cmd SigninCommand) (*Session, error)
	// AdminSignin is Signin restricted to accounts holding the admin role.
	AdminSignin(ctx context.Context, cmd SigninCommand) (*Session, error)

	Me(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Profile, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, cmd AvatarCommand) (*Profile, error)
	DeleteAvatar(ctx context.Context, id uuid.UUID) (*Profile, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Profile], error)
	SetRole(ctx context.Context, id uuid.UUID, cmd RoleCommand) (*Profile, error)
}
