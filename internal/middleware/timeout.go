package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds non-streaming handlers with a request deadline. The
// handler sees the cancellation through the request context.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StreamTimeout bounds upload and download handlers with a generous
// ceiling instead of the normal request deadline, so large files are not
// cut off mid-stream.
func StreamTimeout(maxDuration time.Duration) func(http.Handler) http.Handler {
	return Timeout(maxDuration)
}
