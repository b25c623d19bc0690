package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-file-manager/internal/handler"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/middleware"
	"go-file-manager/internal/service"
	"go-file-manager/internal/websocket"
)

type Deps struct {
	Auth        *handler.AuthHandler
	Directories *handler.DirectoryHandler
	Files       *handler.FileHandler
	Operations  *handler.OperationsHandler
	Search      *handler.SearchHandler
	Cache       *handler.CacheHandler
	Transfers   *handler.TransferHandler
	Settings    *handler.SettingsHandler
	Health      *handler.HealthHandler

	Hub       *websocket.Hub
	Validator middleware.TokenValidator
	Limiter   *middleware.RateLimiter
	AuthLimit *middleware.RateLimiter

	SettingsProvider middleware.SettingsProvider
	Logger           *logger.Logger

	RequestTimeout    time.Duration
	StreamMaxDuration time.Duration
}

// New assembles the route tree. The chain order is deliberate: recovery
// outermost, then CORS, headers, logging, rate limiting, and per-group
// timeouts innermost so streams get their own ceiling.
func New(deps Deps, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.SecurityHeaders(deps.SettingsProvider, deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(deps.Limiter.Middleware)

	r.Get("/health", deps.Health.Health)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(deps.AuthLimit.Middleware)
			auth.Use(middleware.Timeout(deps.RequestTimeout))
			auth.Post("/login", deps.Auth.Login)
			auth.Post("/refresh", deps.Auth.Refresh)
			auth.Post("/logout", deps.Auth.Logout)

			auth.Group(func(protected chi.Router) {
				protected.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
				protected.Use(middleware.RequireRoles(deps.Logger, service.RoleAdmin))
				protected.Post("/register", deps.Auth.Register)
			})

			auth.Group(func(protected chi.Router) {
				protected.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
				protected.Get("/me", deps.Auth.Me)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

			protected.Group(func(timed chi.Router) {
				timed.Use(middleware.Timeout(deps.RequestTimeout))

				timed.Get("/directories", deps.Directories.List)
				timed.Get("/files/stat", deps.Directories.Stat)
				timed.Get("/search", deps.Search.Search)
				timed.Get("/cache/generation", deps.Directories.Generation)
				timed.Get("/cache/progress", deps.Cache.Progress)
				timed.Get("/transfers", deps.Transfers.List)
				timed.Get("/transfers/stats", deps.Transfers.Stats)
				timed.Get("/transfers/{id}", deps.Transfers.Get)
				timed.Get("/settings", deps.Settings.Get)

				timed.Group(func(editor chi.Router) {
					editor.Use(middleware.RequireRoles(deps.Logger, service.RoleAdmin, service.RoleEditor))

					editor.Post("/directories", deps.Directories.Create)
					editor.Post("/files/rename", deps.Operations.Rename)
					editor.Post("/files/delete", deps.Operations.Delete)
					editor.Post("/files/paste", deps.Operations.Paste)
					editor.Delete("/transfers/{id}", deps.Transfers.Remove)
				})

				timed.Group(func(admin chi.Router) {
					admin.Use(middleware.RequireRoles(deps.Logger, service.RoleAdmin))

					admin.Post("/cache/refresh", deps.Cache.Refresh)
					admin.Put("/settings", deps.Settings.Update)
				})
			})

			// Streaming endpoints get the long ceiling instead of the
			// request timeout.
			protected.Group(func(stream chi.Router) {
				stream.Use(middleware.StreamTimeout(deps.StreamMaxDuration))

				stream.Get("/files/download", deps.Files.Download)
				stream.Group(func(editor chi.Router) {
					editor.Use(middleware.RequireRoles(deps.Logger, service.RoleAdmin, service.RoleEditor))
					editor.Post("/files/upload", deps.Files.Upload)
				})
			})

			protected.Get("/ws", deps.Hub.ServeWS)
		})
	})

	return r
}
