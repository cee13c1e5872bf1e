package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sapulidi/sapulidi/internal/ai"
	"github.com/sapulidi/sapulidi/pkg/lifecycle"
)

func openAIConfig(t *testing.T, baseURL string) *ai.Config {
	t.Helper()
	retries := 1
	cfg := &ai.Config{
		Provider:       ai.ProviderOpenAI,
		APIKey:         "test-key",
		BaseURL:        baseURL,
		MaxRetries:     &retries,
		InitialBackoff: "1ms",
		MaxBackoff:     "2ms",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func started(t *testing.T, cfg *ai.Config) ai.System {
	t.Helper()
	sys, err := ai.New(cfg, discard, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("start: %v", err)
	}
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(time.Second) })
	return sys
}

func TestNotReadyFailsFast(t *testing.T) {
	cfg := openAIConfig(t, "http://127.0.0.1:1")
	sys, err := ai.New(cfg, discard, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if sys.Ready() {
		t.Fatal("system ready before start")
	}

	_, err = sys.Invoke(context.Background(), "p", "", ai.Options{Model: "m"})
	if !errors.Is(err, ai.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestMissingAPIKeyStaysUnavailable(t *testing.T) {
	cfg := openAIConfig(t, "http://127.0.0.1:1")
	cfg.APIKey = ""
	sys := started(t, cfg)

	if sys.Ready() {
		t.Error("system ready without api key")
	}
	if _, err := sys.Invoke(context.Background(), "p", "", ai.Options{}); !errors.Is(err, ai.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestOpenAIInvoke(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"waste_types\":[]}"}}]}`))
	}))
	defer srv.Close()

	sys := started(t, openAIConfig(t, srv.URL))
	if !sys.Ready() {
		t.Fatal("system not ready after startup")
	}

	raw, err := sys.Invoke(context.Background(), "classify", "data:image/png;base64,iVBORw0KGgo=", ai.Options{Model: "gpt-4o-mini", MaxTokens: 100})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	choice, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("envelope type = %T, want map", raw)
	}
	msg, _ := choice["message"].(map[string]any)
	if msg["content"] != `{"waste_types":[]}` {
		t.Errorf("content = %v", msg["content"])
	}

	if body["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", body["model"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("messages = %v", body["messages"])
	}
	parts, _ := messages[0].(map[string]any)["content"].([]any)
	if len(parts) != 2 {
		t.Errorf("content parts = %d, want text and image", len(parts))
	}
}

func TestOpenAITransportErrorsRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"halo"}}]}`))
	}))
	defer srv.Close()

	sys := started(t, openAIConfig(t, srv.URL))

	if _, err := sys.Invoke(context.Background(), "hai", "", ai.Options{Model: "m"}); err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestOpenAIPersistentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sys := started(t, openAIConfig(t, srv.URL))

	_, err := sys.Invoke(context.Background(), "hai", "", ai.Options{Model: "m"})
	if !errors.Is(err, ai.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}
