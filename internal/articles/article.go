// Package articles implements the educational article domain: admin
// authored posts with an optional cover image in blob storage.
package articles

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/formatting"
	"github.com/sapulidi/sapulidi/pkg/handlers"
)

// Article is a published post. Content is HTML.
type Article struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"image_url"`
	ImageKey  *string   `json:"-"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommand carries a new article and its optional cover image.
type CreateCommand struct {
	Title    string
	Content  string
	Category string
	AuthorID string
	Image    *handlers.Upload
}

// UpdateCommand replaces an article's fields. A nil Image keeps the
// current cover.
type UpdateCommand struct {
	Title    string
	Content  string
	Category string
	Image    *handlers.Upload
}

func validate(title, content, category string, image *handlers.Upload) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" || strings.TrimSpace(category) == "" {
		return ErrInvalidArticle
	}
	if image != nil && !strings.HasPrefix(image.ContentType, "image/") {
		return ErrInvalidImage
	}
	return nil
}

// ImageKey is the blob key for a cover uploaded by author at the given time.
func ImageKey(author string, at time.Time, contentType string) string {
	return fmt.Sprintf("articles/%s-%d%s", author, at.UnixMilli(), formatting.ExtensionFor(contentType))
}
