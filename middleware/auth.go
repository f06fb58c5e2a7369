package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const scorekeeperContextKey contextKey = "scorekeeper"

const jwtClaimSubject = "sub"

// Authenticate guards the write endpoints: results, corrections and
// challenges come from authenticated scorekeepers only. The token is a
// standard HS256 bearer JWT whose subject names the scorekeeper.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid or expired token")
				return
			}

			subject, ok := claims[jwtClaimSubject].(string)
			if !ok || subject == "" {
				unauthorized(w, "token is missing its subject")
				return
			}

			ctx := context.WithValue(r.Context(), scorekeeperContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScorekeeperFromContext returns the authenticated scorekeeper name.
func ScorekeeperFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(scorekeeperContextKey).(string)
	if !ok || subject == "" {
		return "", errors.New("scorekeeper not found in context")
	}
	return subject, nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error": %q}`+"\n", message)
}
