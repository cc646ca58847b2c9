package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/corville/notekeep/internal/auth"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"userID"}

// RequireAuth returns middleware that validates the Bearer access token and
// stores the authenticated user id in the request context.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenStr == header {
				writeJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
				return
			}
			userID, err := svc.Authenticate(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

// userID returns the authenticated user id stored by RequireAuth.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
