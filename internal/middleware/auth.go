package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/response"
)

type ctxKey string

const ctxKeyUserID ctxKey = "auth_user_id"

var (
	errNoToken      = appErrors.Unauthorized("no credentials provided")
	errInvalidToken = appErrors.Unauthorized("invalid credentials")
)

// Restricted lets a request through only with a valid HS256 token in the
// Authorization header, either bare or as "Bearer <token>".
func Restricted(secret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromHeader(r.Header.Get("Authorization"))
			if raw == "" {
				response.Error(w, r, logger, errNoToken)
				return
			}

			subject, err := verify(raw, key)
			if err != nil {
				response.Error(w, r, logger, errInvalidToken.Wrap(err))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the token subject stored by Restricted.
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

func tokenFromHeader(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return h
}

func verify(raw string, key []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token claims")
	}
	return claims.Subject, nil
}
