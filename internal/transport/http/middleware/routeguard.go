package middleware

import (
	"net/http"

	"appraisal/internal/domain/access"
	"appraisal/internal/transport/http/api"
)

// RequireRoute enforces the route allow-list. Unauthenticated requests get
// 401, authenticated ones without a matching role get 403.
func RequireRoute(acc *access.Service, routeName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !acc.CanAccessRoute(r.Context(), user.UserID, routeName) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
