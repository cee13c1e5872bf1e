package gallery

import (
	"net/url"

	"github.com/sapulidi/sapulidi/pkg/query"
	"github.com/sapulidi/sapulidi/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "gallery", "g").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("media_url", "MediaURL").
	Project("media_key", "MediaKey").
	Project("thumbnail_url", "ThumbnailURL").
	Project("thumbnail_key", "ThumbnailKey").
	Project("media_type", "MediaType").
	Project("aspect_ratio", "AspectRatio").
	Project("author_id", "AuthorID").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for gallery queries.
type Filters struct {
	MediaType   *string `json:"media_type,omitempty"`
	AspectRatio *string `json:"aspect_ratio,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("MediaType", f.MediaType).
		WhereEquals("AspectRatio", f.AspectRatio)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if mt := values.Get("media_type"); mt != "" {
		f.MediaType = &mt
	}

	if ar := values.Get("aspect_ratio"); ar != "" {
		f.AspectRatio = &ar
	}

	return f
}

func scanItem(s repository.Scanner) (Item, error) {
	var g Item
	err := s.Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.MediaURL,
		&g.MediaKey,
		&g.ThumbnailURL,
		&g.ThumbnailKey,
		&g.MediaType,
		&g.AspectRatio,
		&g.AuthorID,
		&g.CreatedAt,
	)
	return g, err
}
