package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sapulidi/sapulidi/pkg/handlers"
)

// Middleware decodes an optional bearer token into the request context.
// Requests without a token pass through anonymously; a token that fails
// verification is rejected with 401.
func Middleware(sys System, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sys.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			reject(w, ErrUnauthenticated)
			return
		}
		next(w, r)
	}
}

// RequireRole rejects anonymous requests with 401 and callers without
// role with 403.
func RequireRole(role string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				reject(w, ErrUnauthenticated)
				return
			}
			if claims.Role != role {
				reject(w, ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}

func reject(w http.ResponseWriter, err error) {
	handlers.RespondJSON(w, MapHTTPStatus(err), map[string]string{"error": err.Error()})
}

func bearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
