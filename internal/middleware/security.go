package middleware

import (
	"net/http"

	"go-file-manager/internal/logger"
)

const defaultCSP = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self'"

// SecurityHeaders adds the standard hardening headers, honoring the
// runtime toggles for the header set and the CSP separately.
func SecurityHeaders(settings SettingsProvider, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := settings.CurrentSettings()

			if current.SecurityHeaders {
				header := w.Header()
				header.Set("X-Content-Type-Options", "nosniff")
				header.Set("X-Frame-Options", "DENY")
				header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
				header.Set("X-XSS-Protection", "0")
			}

			if current.CSP {
				w.Header().Set("Content-Security-Policy", defaultCSP)
			}

			next.ServeHTTP(w, r)
		})
	}
}
