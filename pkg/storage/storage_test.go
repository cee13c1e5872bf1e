package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/sapulidi/sapulidi/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func newAzurite(t *testing.T, publicBase string) storage.System {
	t.Helper()
	cfg := &storage.Config{
		ContainerName:    "sapulidi",
		ConnectionString: azuriteConnString,
		PublicBaseURL:    publicBase,
	}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		ContainerName:    "sapulidi",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"unavailable", fmt.Errorf("%w: upload", storage.ErrUnavailable), http.StatusServiceUnavailable},
		{"wrapped not found", fmt.Errorf("download: %w", storage.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	sys := newAzurite(t, "")
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "avatars/../secrets/key", storage.ErrInvalidKey},
		{"empty segment", "gallery//a.png", storage.ErrInvalidKey},
		{"leading slash", "/avatars/a.png", storage.ErrInvalidKey},
		{"backslash", `avatars\a.png`, storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "image/png"); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
			}
			if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestURL(t *testing.T) {
	t.Run("blob endpoint", func(t *testing.T) {
		sys := newAzurite(t, "")
		got := sys.URL("avatars/u1/avatar.png")
		want := "http://127.0.0.1:10000/devstoreaccount1/sapulidi/avatars/u1/avatar.png"
		if got != want {
			t.Errorf("URL() = %q, want %q", got, want)
		}
		key, ok := sys.Key(got)
		if !ok || key != "avatars/u1/avatar.png" {
			t.Errorf("Key() = %q, %v", key, ok)
		}
	})

	t.Run("public base", func(t *testing.T) {
		sys := newAzurite(t, "/api/storage")
		got := sys.URL("gallery/u1/1700000000000-foto daur.png")
		if got != "/api/storage/gallery/u1/1700000000000-foto%20daur.png" {
			t.Errorf("URL() = %q", got)
		}
		key, ok := sys.Key(got)
		if !ok || key != "gallery/u1/1700000000000-foto daur.png" {
			t.Errorf("Key() = %q, %v", key, ok)
		}
	})

	t.Run("foreign url", func(t *testing.T) {
		sys := newAzurite(t, "/api/storage")
		if _, ok := sys.Key("https://cdn.example.com/a.png"); ok {
			t.Error("Key() should reject addresses from other hosts")
		}
	})
}
