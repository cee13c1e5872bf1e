// Package auth issues and verifies bearer tokens and carries the caller's
// identity through request contexts.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sapulidi/sapulidi/pkg/lifecycle"
)

// System issues HS256 session tokens and verifies bearer tokens. When an
// OIDC issuer is configured, tokens from that issuer are accepted too.
type System interface {
	Start(lc *lifecycle.Coordinator) error
	Issue(claims Claims) (Token, error)
	Verify(ctx context.Context, raw string) (*Claims, error)
}

type tokenClaims struct {
	Claims
	jwt.RegisteredClaims
}

type oidcClaims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type authenticator struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	cfg      *Config
	verifier atomic.Pointer[oidc.IDTokenVerifier]
	logger   *slog.Logger
}

// New creates an auth system from a finalized config.
func New(cfg *Config, logger *slog.Logger) System {
	return &authenticator{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTLDuration(),
		issuer: cfg.Issuer,
		cfg:    cfg,
		logger: logger.With("system", "auth"),
	}
}

func (a *authenticator) Start(lc *lifecycle.Coordinator) error {
	if !a.cfg.OIDCEnabled() {
		return nil
	}

	lc.OnStartup(func() {
		provider, err := oidc.NewProvider(lc.Context(), a.cfg.OIDCIssuer)
		if err != nil {
			a.logger.Error("oidc discovery failed", "issuer", a.cfg.OIDCIssuer, "error", err)
			return
		}
		a.verifier.Store(provider.Verifier(&oidc.Config{ClientID: a.cfg.OIDCClientID}))
		a.logger.Info("oidc verifier ready", "issuer", a.cfg.OIDCIssuer)
	})

	return nil
}

func (a *authenticator) Issue(claims Claims) (Token, error) {
	now := time.Now().UTC()
	expires := now.Add(a.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expires}, nil
}

func (a *authenticator) Verify(ctx context.Context, raw string) (*Claims, error) {
	if claims, err := a.verifyLocal(raw); err == nil {
		return claims, nil
	}

	if verifier := a.verifier.Load(); verifier != nil {
		if claims, err := a.verifyOIDC(ctx, verifier, raw); err == nil {
			return claims, nil
		}
	}

	return nil, ErrInvalidToken
}

func (a *authenticator) verifyLocal(raw string) (*Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(
		raw,
		&tc,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if tc.UserID == "" {
		return nil, ErrInvalidToken
	}
	if tc.Role == "" {
		tc.Role = RoleUser
	}

	claims := tc.Claims
	return &claims, nil
}

func (a *authenticator) verifyOIDC(ctx context.Context, verifier *oidc.IDTokenVerifier, raw string) (*Claims, error) {
	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	var oc oidcClaims
	if err := idToken.Claims(&oc); err != nil {
		return nil, err
	}

	role := RoleUser
	if slices.Contains(oc.Roles, RoleAdmin) {
		role = RoleAdmin
	}

	return &Claims{UserID: idToken.Subject, Email: oc.Email, Role: role}, nil
}
