// Package profiles manages user accounts, sessions, and profile data
// including avatars kept in blob storage.
package profiles

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/auth"
)

// MaxAvatarSize is the largest accepted avatar, in bytes.
const MaxAvatarSize = 2 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Profile is a user account with its public profile fields.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	Username  *string   `json:"username"`
	AvatarKey *string   `json:"-"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims returns the token claims for the profile.
func (p Profile) Claims() auth.Claims {
	return auth.Claims{UserID: p.ID.String(), Email: p.Email, Role: p.Role}
}

// Session is an issued token with the signed-in profile.
type Session struct {
	auth.Token
	Profile Profile `json:"profile"`
}

// SignupCommand registers a new account.
type SignupCommand struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
}

func (c *SignupCommand) normalize() error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return ErrInvalidEmail
	}
	c.FullName = trimmed(c.FullName)
	c.Username = trimmed(c.Username)
	return validUsername(c.Username)
}

// SigninCommand authenticates by email or username.
type SigninCommand struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UpdateCommand changes profile fields. Nil fields are left unchanged.
type UpdateCommand struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
}

func (c *UpdateCommand) normalize() error {
	c.FullName = trimmed(c.FullName)
	c.Username = trimmed(c.Username)
	return validUsername(c.Username)
}

// AvatarCommand carries an uploaded avatar image.
type AvatarCommand struct {
	Data        []byte
	ContentType string
}

// RoleCommand assigns a role.
type RoleCommand struct {
	Role string `json:"role"`
}

// Filters narrows profile listings.
type Filters struct {
	Role *string `json:"role,omitempty"`
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func validUsername(s *string) error {
	if s == nil {
		return nil
	}
	n := utf8.RuneCountInString(*s)
	if n < 3 || n > 30 || strings.ContainsAny(*s, " @/") {
		return ErrInvalidUsername
	}
	return nil
}
