package chat_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/internal/chat"
	"github.com/sapulidi/sapulidi/internal/prompts"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type promptStore struct {
	prompts.System
	active *prompts.Prompt
}

func (p promptStore) Active(context.Context, prompts.Stage) (*prompts.Prompt, error) {
	if p.active == nil {
		return nil, prompts.ErrNotFound
	}
	return p.active, nil
}

func (promptStore) Spec(stage prompts.Stage) (string, error) {
	return prompts.Spec(prompts.LocaleID, stage)
}

func (promptStore) Locale() prompts.Locale { return prompts.LocaleID }

type memoryStore struct {
	messages []chat.Message
	insertFn func() error
}

func (s *memoryStore) Insert(_ context.Context, userID, message, response string) (chat.Message, error) {
	if s.insertFn != nil {
		if err := s.insertFn(); err != nil {
			return chat.Message{}, err
		}
	}
	m := chat.Message{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Response:  response,
		CreatedAt: time.Now().Add(time.Duration(len(s.messages)) * time.Second),
	}
	s.messages = append(s.messages, m)
	return m, nil
}

func (s *memoryStore) ListByUser(_ context.Context, userID string) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memoryStore) DeleteByUser(_ context.Context, userID string) (int64, error) {
	var kept []chat.Message
	var n int64
	for _, m := range s.messages {
		if m.UserID == userID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return n, nil
}

var chatOptions = ai.Options{Model: "gemini-1.5-flash", Temperature: 0.7, MaxTokens: 500}

func TestSend(t *testing.T) {
	var gotPrompt, gotImage string
	var gotOpts ai.Options
	capability := ai.CapabilityFunc(func(_ context.Context, prompt, image string, opts ai.Options) (any, error) {
		gotPrompt, gotImage, gotOpts = prompt, image, opts
		return map[string]any{"content": "  Plastik PET bisa didaur ulang ♻️  "}, nil
	})

	store := &memoryStore{}
	sys := chat.New(store, capability, promptStore{}, chatOptions, discard)

	m, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: "  Apa itu PET?  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if m.Message != "Apa itu PET?" {
		t.Errorf("Message = %q, want trimmed", m.Message)
	}
	if m.Response != "Plastik PET bisa didaur ulang ♻️" {
		t.Errorf("Response = %q", m.Response)
	}
	if !strings.HasSuffix(gotPrompt, "\n\nPertanyaan pengguna: Apa itu PET?") {
		t.Errorf("prompt does not end with the question: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "SapuLidi Assistant") {
		t.Error("prompt missing default chat instructions")
	}
	if gotImage != "" {
		t.Errorf("image = %q, want empty", gotImage)
	}
	if gotOpts != chatOptions {
		t.Errorf("options = %+v, want %+v", gotOpts, chatOptions)
	}
	if len(store.messages) != 1 {
		t.Errorf("stored = %d, want 1", len(store.messages))
	}
}

func TestSendUsesActiveOverride(t *testing.T) {
	var gotPrompt string
	capability := ai.CapabilityFunc(func(_ context.Context, prompt, _ string, _ ai.Options) (any, error) {
		gotPrompt = prompt
		return "ok", nil
	})

	ps := promptStore{active: &prompts.Prompt{ID: uuid.New(), Stage: prompts.StageChat, Instructions: "Kamu adalah asisten bank sampah."}}
	sys := chat.New(&memoryStore{}, capability, ps, chatOptions, discard)

	if _, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: "halo"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(gotPrompt, "Kamu adalah asisten bank sampah.") {
		t.Errorf("prompt = %q, want override instructions first", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "PEDOMAN PENTING") {
		t.Error("prompt missing fixed chat guidelines")
	}
}

func TestSendFallbackResponse(t *testing.T) {
	tests := map[string]any{
		"blank string":  "   ",
		"empty content": map[string]any{"content": ""},
		"non-text":      map[string]any{"content": 42.0},
		"nil":           nil,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			capability := ai.CapabilityFunc(func(context.Context, string, string, ai.Options) (any, error) {
				return raw, nil
			})
			sys := chat.New(&memoryStore{}, capability, promptStore{}, chatOptions, discard)

			m, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: "halo"})
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if m.Response != "Maaf, saya tidak dapat menghasilkan respon. Silakan coba lagi." {
				t.Errorf("Response = %q, want fallback", m.Response)
			}
		})
	}
}

func TestSendRejectsInvalidMessage(t *testing.T) {
	called := false
	capability := ai.CapabilityFunc(func(context.Context, string, string, ai.Options) (any, error) {
		called = true
		return "ok", nil
	})
	sys := chat.New(&memoryStore{}, capability, promptStore{}, chatOptions, discard)

	tests := map[string]string{
		"empty":      "",
		"whitespace": " \n\t ",
		"too long":   strings.Repeat("ä", chat.MaxMessageLength+1),
	}

	for name, msg := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: msg}); !errors.Is(err, chat.ErrInvalidMessage) {
				t.Errorf("error = %v, want ErrInvalidMessage", err)
			}
		})
	}

	t.Run("exactly max runes", func(t *testing.T) {
		if _, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: strings.Repeat("ä", chat.MaxMessageLength)}); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	if !called {
		t.Error("capability not called for the valid message")
	}
}

func TestSendInvokeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   error
		status int
	}{
		{"unavailable", ai.ErrUnavailable, chat.ErrUnavailable, http.StatusServiceUnavailable},
		{"transport", fmt.Errorf("%w: 500", ai.ErrTransport), chat.ErrTransport, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capability := ai.CapabilityFunc(func(context.Context, string, string, ai.Options) (any, error) {
				return nil, tt.err
			})
			store := &memoryStore{}
			sys := chat.New(store, capability, promptStore{}, chatOptions, discard)

			_, err := sys.Send(context.Background(), "alice", chat.SendCommand{Message: "halo"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if got := chat.MapHTTPStatus(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
			if len(store.messages) != 0 {
				t.Error("failed send should not store a message")
			}
		})
	}
}

func TestSendDeadlineExceeded(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	capability := ai.CapabilityFunc(func(ctx context.Context, _, _ string, _ ai.Options) (any, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", ai.ErrTransport, ctx.Err())
	})
	sys := chat.New(&memoryStore{}, capability, promptStore{}, chatOptions, discard)

	_, err := sys.Send(ctx, "alice", chat.SendCommand{Message: "halo"})
	if !errors.Is(err, chat.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if got := chat.MapHTTPStatus(err); got != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", got)
	}
}

func TestListAndClear(t *testing.T) {
	capability := ai.CapabilityFunc(func(_ context.Context, prompt, _ string, _ ai.Options) (any, error) {
		return "jawaban", nil
	})
	store := &memoryStore{}
	sys := chat.New(store, capability, promptStore{}, chatOptions, discard)
	ctx := context.Background()

	for _, q := range []string{"satu", "dua"} {
		if _, err := sys.Send(ctx, "alice", chat.SendCommand{Message: q}); err != nil {
			t.Fatalf("Send(%q): %v", q, err)
		}
	}
	sys.Send(ctx, "bob", chat.SendCommand{Message: "tiga"})

	items, err := sys.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].Message != "satu" || items[1].Message != "dua" {
		t.Errorf("items = %+v, want satu then dua", items)
	}

	n, err := sys.Clear(ctx, "alice")
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}

	if items, _ := sys.List(ctx, "bob"); len(items) != 1 {
		t.Errorf("bob items = %d, want 1", len(items))
	}
}

func TestFAQs(t *testing.T) {
	faqs := chat.FAQs()
	if len(faqs) != 6 {
		t.Fatalf("len = %d, want 6", len(faqs))
	}
	for _, q := range faqs {
		if !strings.HasSuffix(q, "?") {
			t.Errorf("faq %q is not a question", q)
		}
	}
}
