package middleware

import (
	"net/http"
	"runtime/debug"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/model"
	"go-file-manager/internal/util"
)

// Recovery converts handler panics into 500 responses. The stack goes to
// the log, never to the client.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					log.Error(logger.CategorySystem, "panic while handling request", map[string]any{
						"panic": recovered,
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					}, nil)

					util.WriteJSON(w, http.StatusInternalServerError, model.APIResponse{
						Success: false,
						Error:   &model.APIError{Code: "IO", Message: "internal server error"},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
