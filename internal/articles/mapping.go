package articles

import (
	"net/url"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "articles", "a").
	Project("id", "ID").
	Project("title", "Title").
	Project("content", "Content").
	Project("category", "Category").
	Project("image_url", "ImageURL").
	Project("image_key", "ImageKey").
	Project("author_id", "AuthorID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for article queries.
// Nil fields are ignored.
type Filters struct {
	Category *string `json:"category,omitempty"`
	AuthorID *string `json:"author_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("AuthorID", f.AuthorID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if a := values.Get("author_id"); a != "" {
		f.AuthorID = &a
	}

	return f
}

func scanArticle(s repository.Scanner) (Article, error) {
	var a Article
	err := s.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Category,
		&a.ImageURL,
		&a.ImageKey,
		&a.AuthorID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
