package middleware

import (
	"context"
	"net/http"
	"strings"

	"paycalc/internal/auth"
	"paycalc/internal/transport/http/api"
)

// RequireToken demands an HS256 bearer token carrying scope. An empty secret
// disables authentication.
func RequireToken(secret, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqID := GetRequestID(r.Context())

			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
				return
			}
			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", reqID)
				return
			}
			if scope != "" && !claims.HasScope(scope) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient scope", reqID)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSubject(ctx context.Context) string {
	if value, ok := ctx.Value(ctxKeySubject).(string); ok {
		return value
	}
	return ""
}
