package middleware

import (
	"context"
	"net/http"
	"time"
)

// ExtendedTimeout bounds the request context with d, which may be longer than the
// server's default handler budget. Report generation upstream can take minutes.
func ExtendedTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
