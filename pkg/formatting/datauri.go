package formatting

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURI is returned when a string is not a base64 data URI.
var ErrInvalidDataURI = errors.New("invalid data URI")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// DataURI is a decoded data: URI.
type DataURI struct {
	MimeType string
	Data     []byte
}

// IsImage reports whether the media type is image/*.
func (d DataURI) IsImage() bool {
	return strings.HasPrefix(d.MimeType, "image/")
}

// Extension returns the file extension for the media type.
func (d DataURI) Extension() string {
	return ExtensionFor(d.MimeType)
}

// Base64 returns the payload re-encoded as standard base64.
func (d DataURI) Base64() string {
	return base64.StdEncoding.EncodeToString(d.Data)
}

// String renders the URI back to data:<mime>;base64,<payload>.
func (d DataURI) String() string {
	return "data:" + d.MimeType + ";base64," + d.Base64()
}

// ParseDataURI decodes data:<mime>;base64,<payload>. Only base64 payloads
// are accepted.
func ParseDataURI(s string) (DataURI, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return DataURI{}, ErrInvalidDataURI
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, ErrInvalidDataURI
	}

	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok || mime == "" {
		return DataURI{}, ErrInvalidDataURI
	}
	mime, _, _ = strings.Cut(mime, ";")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURI{}, ErrInvalidDataURI
	}
	if len(data) == 0 {
		return DataURI{}, ErrInvalidDataURI
	}

	return DataURI{MimeType: strings.ToLower(mime), Data: data}, nil
}

// ExtensionFor maps a media type to a file extension. Unknown types get
// ".bin".
func ExtensionFor(mime string) string {
	if ext, ok := extensions[strings.ToLower(mime)]; ok {
		return ext
	}
	return ".bin"
}
