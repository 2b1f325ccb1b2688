package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/hongminglow/levelup-be/internal/auth"
	"github.com/hongminglow/levelup-be/internal/http/respond"
	"github.com/hongminglow/levelup-be/internal/session"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// Authenticate requires a valid session token and puts its identity on the
// request context. EventSource clients cannot set headers, so the token is
// also accepted as the access_token query parameter.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "please login first")
				return
			}
			id, err := tokens.Parse(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "invalid session")
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}

// RequireAdmin lets the request through only when the stored user record
// has the admin role. The role is read on every request so a revoked admin
// loses access immediately.
func RequireAdmin(users storage.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.IdentityFrom(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "please login first")
				return
			}
			u, err := users.GetUser(r.Context(), id.UID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					respond.Error(w, http.StatusForbidden, "admin access required")
					return
				}
				log.Printf("admin guard: load user %s: %v", id.UID, err)
				respond.Error(w, http.StatusInternalServerError, "failed to load user")
				return
			}
			if !u.IsAdmin() {
				respond.Error(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
