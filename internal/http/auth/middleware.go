// Package auth checks HS256 bearer tokens on API requests.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/flora/internal/http/respond"
)

type ctxKey struct{}

// Subject returns the token subject stored by Middleware, if any.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// Middleware rejects requests without a valid token signed with secret.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, errors.New("missing bearer token"))
				return
			}

			var claims jwt.RegisteredClaims

			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				unauthorized(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Subject)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter, err error) {
	slog.Debug("rejected token", "error", err)

	w.Header().Set("WWW-Authenticate", `Bearer realm="flora"`)
	respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
