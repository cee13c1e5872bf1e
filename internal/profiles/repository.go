package profiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/pagination"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

type repo struct {
	store      Store
	auth       auth.System
	blobs      storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the profile system.
func New(
	store Store,
	authSys auth.System,
	blobs storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		store:      store,
		auth:       authSys,
		blobs:      blobs,
		logger:     logger.With("system", "profiles"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Signup(ctx context.Context, cmd SignupCommand) (*Session, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	p, err := r.store.Create(ctx, cmd.Email, hash, cmd.FullName, cmd.Username)
	if err != nil {
		return nil, err
	}

	r.logger.Info("account created", "id", p.ID)
	return r.session(p)
}

func (r *repo) Signin(ctx context.Context, cmd SigninCommand) (*Session, error) {
	p, err := r.authenticate(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return r.session(p)
}

func (r *repo) AdminSignin(ctx context.Context, cmd SigninCommand) (*Session, error) {
	p, err := r.authenticate(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if p.Role != auth.RoleAdmin {
		r.logger.Warn("admin signin refused", "id", p.ID)
		return nil, auth.ErrForbidden
	}
	return r.session(p)
}

func (r *repo) Me(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.resolve(p), nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Profile, error) {
	if err := cmd.normalize(); err != nil {
		return nil, err
	}

	p, err := r.store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	r.logger.Info("profile updated", "id", id)
	return r.resolve(p), nil
}

func (r *repo) UploadAvatar(ctx context.Context, id uuid.UUID, cmd AvatarCommand) (*Profile, error) {
	if len(cmd.Data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}

	contentType := cmd.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(cmd.Data)
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, ErrInvalidAvatar
	}

	current, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/avatar%s", id, ext)
	if err := r.blobs.Upload(ctx, key, bytes.NewReader(cmd.Data), contentType); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	p, err := r.store.SetAvatar(ctx, id, &key)
	if err != nil {
		r.removeBlob(ctx, key)
		return nil, err
	}

	if current.AvatarKey != nil && *current.AvatarKey != key {
		r.removeBlob(ctx, *current.AvatarKey)
	}

	r.logger.Info("avatar uploaded", "id", id, "key", key)
	return r.resolve(p), nil
}

func (r *repo) DeleteAvatar(ctx context.Context, id uuid.UUID) (*Profile, error) {
	current, err := r.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AvatarKey == nil {
		return r.resolve(current), nil
	}

	p, err := r.store.SetAvatar(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	r.removeBlob(ctx, *current.AvatarKey)
	r.logger.Info("avatar deleted", "id", id)
	return r.resolve(p), nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Profile], error) {
	page.Normalize(r.pagination)

	result, err := r.store.List(ctx, page, filters)
	if err != nil {
		return nil, err
	}
	for i := range result.Data {
		result.Data[i] = *r.resolve(result.Data[i])
	}
	return result, nil
}

func (r *repo) SetRole(ctx context.Context, id uuid.UUID, cmd RoleCommand) (*Profile, error) {
	if cmd.Role != auth.RoleUser && cmd.Role != auth.RoleAdmin {
		return nil, ErrInvalidRole
	}

	p, err := r.store.SetRole(ctx, id, cmd.Role)
	if err != nil {
		return nil, err
	}

	r.logger.Info("role assigned", "id", id, "role", cmd.Role)
	return r.resolve(p), nil
}

// authenticate hides which half of the credentials was wrong.
func (r *repo) authenticate(ctx context.Context, cmd SigninCommand) (Profile, error) {
	p, hash, err := r.store.Credentials(ctx, cmd.Identifier)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return Profile{}, err
	}

	if err := auth.CheckPassword(hash, cmd.Password); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *repo) session(p Profile) (*Session, error) {
	token, err := r.auth.Issue(p.Claims())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Profile: *r.resolve(p)}, nil
}

func (r *repo) resolve(p Profile) *Profile {
	if p.AvatarKey != nil {
		url := r.blobs.URL(*p.AvatarKey)
		p.AvatarURL = &url
	}
	return &p
}

func (r *repo) removeBlob(ctx context.Context, key string) {
	if err := r.blobs.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Warn("avatar blob delete failed", "key", key, "error", err)
	}
}
