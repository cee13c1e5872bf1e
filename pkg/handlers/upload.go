package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// Upload is a file read from a multipart form.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

// FormFile reads the named file from a parsed multipart form. A missing
// field yields nil without error.
func FormFile(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &Upload{
		Data:        data,
		Filename:    header.Filename,
		ContentType: DetectContentType(header.Header.Get("Content-Type"), data),
	}, nil
}

// DetectContentType trusts the declared type unless it is blank or the
// generic octet-stream, in which case the content is sniffed.
func DetectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}
