package profiles_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sapulidi/sapulidi/internal/profiles"
	"github.com/sapulidi/sapulidi/pkg/auth"
	"github.com/sapulidi/sapulidi/pkg/routes"
)

func serve(sys profiles.System, req *http.Request, claims *auth.Claims) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	if claims != nil {
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func avatarForm(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	w.Close()
	return &body, w.FormDataContentType()
}

func TestHandlerAuthFlow(t *testing.T) {
	f := newFixture(t)

	rec := serve(f.sys, httptest.NewRequest("POST", "/auth/signup",
		strings.NewReader(`{"email":"sari@example.com","password":"rahasia","username":"sari"}`)), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body)
	}

	rec = serve(f.sys, httptest.NewRequest("POST", "/auth/signup",
		strings.NewReader(`{"email":"sari@example.com","password":"rahasia"}`)), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", rec.Code)
	}

	rec = serve(f.sys, httptest.NewRequest("POST", "/auth/signin",
		strings.NewReader(`{"identifier":"sari","password":"rahasia"}`)), nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "access_token") {
		t.Errorf("signin status = %d: %s", rec.Code, rec.Body)
	}

	rec = serve(f.sys, httptest.NewRequest("POST", "/auth/signin",
		strings.NewReader(`{"identifier":"sari","password":"salah!"}`)), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad signin status = %d, want 401", rec.Code)
	}

	rec = serve(f.sys, httptest.NewRequest("POST", "/auth/admin/signin",
		strings.NewReader(`{"identifier":"sari","password":"rahasia"}`)), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin signin status = %d, want 403", rec.Code)
	}
}

func TestHandlerMe(t *testing.T) {
	f := newFixture(t)
	s := f.signup(t, "sari@example.com", "sari")
	claims := &auth.Claims{UserID: s.Profile.ID.String(), Role: auth.RoleUser}

	tests := []struct {
		name   string
		req    func() *http.Request
		claims *auth.Claims
		want   int
	}{
		{"anonymous", func() *http.Request { return httptest.NewRequest("GET", "/profiles/me", nil) }, nil, http.StatusUnauthorized},
		{"get", func() *http.Request { return httptest.NewRequest("GET", "/profiles/me", nil) }, claims, http.StatusOK},
		{"foreign subject", func() *http.Request { return httptest.NewRequest("GET", "/profiles/me", nil) }, &auth.Claims{UserID: "oidc|123"}, http.StatusNotFound},
		{"update", func() *http.Request {
			return httptest.NewRequest("PUT", "/profiles/me", strings.NewReader(`{"full_name":"Sari"}`))
		}, claims, http.StatusOK},
		{"bad username", func() *http.Request {
			return httptest.NewRequest("PUT", "/profiles/me", strings.NewReader(`{"username":"x"}`))
		}, claims, http.StatusBadRequest},
		{"avatar", func() *http.Request {
			body, ct := avatarForm(t, "image/png", pngBytes)
			req := httptest.NewRequest("PUT", "/profiles/me/avatar", body)
			req.Header.Set("Content-Type", ct)
			return req
		}, claims, http.StatusOK},
		{"avatar wrong type", func() *http.Request {
			body, ct := avatarForm(t, "text/plain", []byte("hello"))
			req := httptest.NewRequest("PUT", "/profiles/me/avatar", body)
			req.Header.Set("Content-Type", ct)
			return req
		}, claims, http.StatusBadRequest},
		{"avatar delete", func() *http.Request { return httptest.NewRequest("DELETE", "/profiles/me/avatar", nil) }, claims, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(f.sys, tt.req(), tt.claims)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHandlerAdminRoutes(t *testing.T) {
	f := newFixture(t)
	s := f.signup(t, "sari@example.com", "sari")
	user := &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleUser}
	admin := &auth.Claims{UserID: uuid.NewString(), Role: auth.RoleAdmin}

	if rec := serve(f.sys, httptest.NewRequest("GET", "/profiles", nil), user); rec.Code != http.StatusForbidden {
		t.Errorf("user list status = %d, want 403", rec.Code)
	}
	if rec := serve(f.sys, httptest.NewRequest("GET", "/profiles?role=user", nil), admin); rec.Code != http.StatusOK {
		t.Errorf("admin list status = %d, want 200", rec.Code)
	}

	path := "/profiles/" + s.Profile.ID.String() + "/role"
	if rec := serve(f.sys, httptest.NewRequest("PUT", path, strings.NewReader(`{"role":"admin"}`)), admin); rec.Code != http.StatusOK {
		t.Errorf("set role status = %d, want 200", rec.Code)
	}
	if rec := serve(f.sys, httptest.NewRequest("PUT", path, strings.NewReader(`{"role":"root"}`)), admin); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid role status = %d, want 400", rec.Code)
	}

	p, _ := f.sys.Me(context.Background(), s.Profile.ID)
	if p.Role != auth.RoleAdmin {
		t.Errorf("role = %q, want admin", p.Role)
	}
}
