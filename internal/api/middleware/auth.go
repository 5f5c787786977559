package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// Subject is the already-authenticated identity forwarded by the
// authentication gateway. The engine never sees credentials or tokens,
// only this verified pair.
type Subject struct {
	UID   string
	Email string
}

// SubjectFromContext returns the authenticated subject, or nil for
// unauthenticated requests.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectContextKey).(*Subject)
	return s
}

// GatewayAuth trusts subject headers only when the request carries the
// shared gateway secret. The compare is constant-time so the secret cannot
// be probed byte by byte.
func GatewayAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Gateway-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid gateway secret")
				return
			}

			uid := strings.TrimSpace(r.Header.Get("X-Subject-Id"))
			if uid == "" {
				writeError(w, http.StatusUnauthorized, "missing subject id")
				return
			}

			subject := &Subject{
				UID:   uid,
				Email: strings.TrimSpace(r.Header.Get("X-Subject-Email")),
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminKeyAuth guards the platform-admin endpoints with a static bearer
// key.
func AdminKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			if key == "" || subtle.ConstantTimeCompare([]byte(parts[1]), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
