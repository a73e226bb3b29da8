package middleware

import (
	"context"
	"net/http"
	"strings"

	"appraisal/internal/auth"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// UserContext is the authenticated caller as seen by handlers. EmployeeID is
// zero when the account has no linked employee record.
type UserContext struct {
	UserID     int64
	EmployeeID int64
	Roles      []string
}

// Auth decodes a bearer token when one is present. Requests without a valid
// token pass through unauthenticated; route guards decide what that means.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Roles:      claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}
