// Package storagetest provides an in-memory storage.System for tests.
package storagetest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/sapulidi/sapulidi/pkg/lifecycle"
	"github.com/sapulidi/sapulidi/pkg/storage"
)

const baseURL = "memory://blobs"

// Blob is a stored object.
type Blob struct {
	Data        []byte
	ContentType string
}

// Memory keeps blobs in a map. Set UploadErr to make every Upload fail.
type Memory struct {
	mu        sync.Mutex
	blobs     map[string]Blob
	UploadErr error
}

// New returns an empty store.
func New() *Memory {
	return &Memory{blobs: make(map[string]Blob)}
}

func (m *Memory) Start(*lifecycle.Coordinator) error { return nil }

func (m *Memory) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = Blob{Data: data, ContentType: contentType}
	return nil
}

func (m *Memory) Download(_ context.Context, key string) (*storage.BlobResult, error) {
	b, ok := m.Get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.BlobResult{
		Body:          io.NopCloser(bytes.NewReader(b.Data)),
		ContentType:   b.ContentType,
		ContentLength: int64(len(b.Data)),
	}, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.Get(key)
	return ok, nil
}

func (m *Memory) URL(key string) string {
	return storage.JoinURL(baseURL, key)
}

func (m *Memory) Key(rawURL string) (string, bool) {
	return storage.SplitURL(baseURL, rawURL)
}

// Get returns the blob at key.
func (m *Memory) Get(key string) (Blob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok
}

// Keys lists stored keys.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.blobs))
	for k := range m.blobs {
		keys = append(keys, k)
	}
	return keys
}
