package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"go-file-manager/internal/logger"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// RequestLogging records one entry per handled request, tagged with a
// request id that is also echoed back to the client.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			recorder := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}

			log.Request(IdentityFromRequest(r), r.Method, r.URL.Path, status, time.Since(start), map[string]any{
				"requestId":     requestID,
				"responseBytes": recorder.written,
				"headers": map[string]string{
					"Authorization": r.Header.Get("Authorization"),
					"Content-Type":  r.Header.Get("Content-Type"),
					"Referer":       r.Header.Get("Referer"),
				},
			})
		})
	}
}
