package profiles

import (
	"net/url"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

// profile_view joins users and profiles.
var projection = query.
	NewProjectionMap("public", "profile_view", "p").
	Project("id", "ID").
	Project("email", "Email").
	Project("full_name", "FullName").
	Project("username", "Username").
	Project("avatar_key", "AvatarKey").
	Project("role", "Role").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Role", f.Role)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if role := values.Get("role"); role != "" {
		f.Role = &role
	}
	return f
}

func scanProfile(s repository.Scanner) (Profile, error) {
	var p Profile
	err := s.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Username,
		&p.AvatarKey,
		&p.Role,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
