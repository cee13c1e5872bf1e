package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sapulidi/sapulidi/internal/chat"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

type mockSystem struct {
	sendFn  func(ctx context.Context, userID string, cmd chat.SendCommand) (*chat.Message, error)
	listFn  func(ctx context.Context, userID string) ([]chat.Message, error)
	clearFn func(ctx context.Context, userID string) (int64, error)
}

func (m *mockSystem) Handler() *chat.Handler {
	return chat.NewHandler(m, discard)
}

func (m *mockSystem) Send(ctx context.Context, userID string, cmd chat.SendCommand) (*chat.Message, error) {
	return m.sendFn(ctx, userID, cmd)
}

func (m *mockSystem) List(ctx context.Context, userID string) ([]chat.Message, error) {
	return m.listFn(ctx, userID)
}

func (m *mockSystem) Clear(ctx context.Context, userID string) (int64, error) {
	return m.clearFn(ctx, userID)
}

func (m *mockSystem) FAQs() []string {
	return chat.FAQs()
}

func serve(sys *mockSystem, req *http.Request, claims *auth.Claims) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

var alice = &auth.Claims{UserID: "alice", Role: auth.RoleUser}

func TestHandlerRequiresUser(t *testing.T) {
	paths := []struct{ method, path string }{
		{"POST", "/chat/messages"},
		{"GET", "/chat/messages"},
		{"DELETE", "/chat/messages"},
		{"GET", "/chat/faqs"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := serve(&mockSystem{}, httptest.NewRequest(p.method, p.path, nil), nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestHandlerSend(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		sys := &mockSystem{
			sendFn: func(_ context.Context, userID string, cmd chat.SendCommand) (*chat.Message, error) {
				return &chat.Message{UserID: userID, Message: cmd.Message, Response: "jawaban"}, nil
			},
		}

		rec := serve(sys, httptest.NewRequest("POST", "/chat/messages", strings.NewReader(`{"message":"halo"}`)), alice)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}

		var m chat.Message
		json.NewDecoder(rec.Body).Decode(&m)
		if m.UserID != "alice" || m.Message != "halo" || m.Response != "jawaban" {
			t.Errorf("message = %+v", m)
		}
	})

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"bad json", "{", nil, http.StatusBadRequest},
		{"invalid message", `{"message":""}`, chat.ErrInvalidMessage, http.StatusBadRequest},
		{"unavailable", `{"message":"halo"}`, chat.ErrUnavailable, http.StatusServiceUnavailable},
		{"transport", `{"message":"halo"}`, chat.ErrTransport, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				sendFn: func(context.Context, string, chat.SendCommand) (*chat.Message, error) {
					return nil, tt.err
				},
			}
			rec := serve(sys, httptest.NewRequest("POST", "/chat/messages", strings.NewReader(tt.body)), alice)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerListClearFAQs(t *testing.T) {
	sys := &mockSystem{
		listFn: func(_ context.Context, userID string) ([]chat.Message, error) {
			return []chat.Message{{UserID: userID, Message: "satu"}}, nil
		},
		clearFn: func(context.Context, string) (int64, error) {
			return 3, nil
		},
	}

	rec := serve(sys, httptest.NewRequest("GET", "/chat/messages", nil), alice)
	var items []chat.Message
	json.NewDecoder(rec.Body).Decode(&items)
	if rec.Code != http.StatusOK || len(items) != 1 || items[0].UserID != "alice" {
		t.Errorf("list: status %d, items %+v", rec.Code, items)
	}

	rec = serve(sys, httptest.NewRequest("DELETE", "/chat/messages", nil), alice)
	var cleared chat.Cleared
	json.NewDecoder(rec.Body).Decode(&cleared)
	if rec.Code != http.StatusOK || cleared.Deleted != 3 {
		t.Errorf("clear: status %d, body %+v", rec.Code, cleared)
	}

	rec = serve(sys, httptest.NewRequest("GET", "/chat/faqs", nil), alice)
	var faqs []string
	json.NewDecoder(rec.Body).Decode(&faqs)
	if len(faqs) != 6 {
		t.Errorf("faqs = %d, want 6", len(faqs))
	}
}
