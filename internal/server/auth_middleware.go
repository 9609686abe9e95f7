package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/server/authctx"
	"shopledger-backend/internal/service"
)

// AuthMiddleware resolves the caller from a bearer token or the auth cookie and stores the
// principal in the request context.
func AuthMiddleware(auth *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing token")
				return
			}
			p, err := auth.Principal(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					writeAuthError(w, http.StatusUnauthorized, "invalid token")
					return
				}
				writeAuthError(w, http.StatusInternalServerError, "could not resolve caller")
				return
			}
			ctx := authctx.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireRole ensures the caller has one of the allowed roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := authctx.FromContext(r.Context())
			if !p.Authenticated() {
				writeAuthError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
		"data":    nil,
		"error":   map[string]any{"code": status, "status": http.StatusText(status)},
	})
}
