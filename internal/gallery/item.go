// Package gallery manages the media gallery: images and videos with an
// optional thumbnail, published by admins.
package gallery

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/pkg/handlers"
)

const (
	MediaImage = "image"
	MediaVideo = "video"

	AspectPortrait  = "portrait"
	AspectLandscape = "landscape"
)

var (
	mediaTypes   = []string{MediaImage, MediaVideo}
	aspectRatios = []string{AspectPortrait, AspectLandscape}
)

// Item is one gallery entry.
type Item struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	MediaURL     string    `json:"media_url"`
	MediaKey     string    `json:"-"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	ThumbnailKey *string   `json:"-"`
	MediaType    string    `json:"media_type"`
	AspectRatio  string    `json:"aspect_ratio"`
	AuthorID     string    `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCommand carries a new entry with its media and optional thumbnail.
type CreateCommand struct {
	Title       string
	Description *string
	MediaType   string
	AspectRatio string
	AuthorID    string
	Media       *handlers.Upload
	Thumbnail   *handlers.Upload
}

func (c CreateCommand) validate() error {
	if c.Media == nil {
		return ErrMissingMedia
	}
	if err := validateMeta(c.Title, c.MediaType, c.AspectRatio); err != nil {
		return err
	}
	if !matchesMediaType(c.Media.ContentType, c.MediaType) {
		return ErrInvalidMedia
	}
	if c.Thumbnail != nil && !matchesMediaType(c.Thumbnail.ContentType, MediaImage) {
		return ErrInvalidMedia
	}
	return nil
}

// UpdateCommand replaces an entry's metadata. A non-nil Media replaces the
// stored file.
type UpdateCommand struct {
	Title       string
	Description *string
	MediaType   string
	AspectRatio string
	Media       *handlers.Upload
}

func (c UpdateCommand) validate() error {
	if err := validateMeta(c.Title, c.MediaType, c.AspectRatio); err != nil {
		return err
	}
	if c.Media != nil && !matchesMediaType(c.Media.ContentType, c.MediaType) {
		return ErrInvalidMedia
	}
	return nil
}

func validateMeta(title, mediaType, aspectRatio string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidItem
	}
	if !slices.Contains(mediaTypes, mediaType) || !slices.Contains(aspectRatios, aspectRatio) {
		return ErrInvalidItem
	}
	return nil
}

func matchesMediaType(contentType, mediaType string) bool {
	return strings.HasPrefix(contentType, mediaType+"/")
}

// MediaKey is the blob key for a file uploaded by author at the given time.
func MediaKey(author string, at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "media"
	}
	return fmt.Sprintf("gallery/%s/%d-%s", author, at.UnixMilli(), url.PathEscape(name))
}
