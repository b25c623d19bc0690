package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/config"
	"go-file-manager/internal/database"
	"go-file-manager/internal/handler"
	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/middleware"
	"go-file-manager/internal/repository"
	"go-file-manager/internal/router"
	"go-file-manager/internal/service"
	"go-file-manager/internal/storage"
	"go-file-manager/internal/transfer"
	"go-file-manager/internal/websocket"
)

// App owns every long-lived component and the HTTP server. Construction
// wires the full graph; Run blocks until the context is cancelled.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	store  kv.Store
	hub    *websocket.Hub
	server *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	disabled := map[logger.Category]bool{}
	for _, category := range cfg.LogCategoriesOff {
		disabled[logger.Category(category)] = true
	}

	log := logger.New(logger.Config{
		Level:              logger.ParseLevel(cfg.LogLevel),
		Detailed:           cfg.LogDetailed,
		DisabledCategories: disabled,
		Dir:                cfg.LogDir,
	})

	local, err := storage.NewLocal(cfg.StorageRoot, cfg.PathMaxDepth)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}

	store, err := kv.NewBadgerStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	metadata := cache.NewMetadataCache(store, local, cfg.CacheTTL, log)
	cached := cache.NewCachedAdapter(local, metadata)
	refresher := cache.NewRefreshController(metadata, local, log)
	tracker := transfer.NewTracker()

	hub := websocket.NewHub(log)
	hub.Attach(tracker)

	users := repository.NewUserRepository(db.Pool)
	tokens := repository.NewTokenRepository(db.Pool)

	authService := service.NewAuthService(users, tokens, log, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err := authService.EnsureDefaultAdmin(ctx); err != nil {
		db.Close()
		store.Close()
		return nil, fmt.Errorf("seed default admin: %w", err)
	}

	settingsService := service.NewSettingsService(ctx, store, log)
	directoryService := service.NewDirectoryService(cached, metadata, log)
	fileService := service.NewFileService(cached, tracker, settingsService, log, cfg.MaxUploadSize, cfg.AllowedMIMETypes)
	operationsService := service.NewOperationsService(cached, log)
	searchService := service.NewSearchService(cached, log, cfg.SearchMaxDepth, cfg.SearchMaxResults, cfg.SearchTimeout)

	deps := router.Deps{
		Auth:        handler.NewAuthHandler(authService),
		Directories: handler.NewDirectoryHandler(directoryService),
		Files:       handler.NewFileHandler(fileService),
		Operations:  handler.NewOperationsHandler(operationsService),
		Search:      handler.NewSearchHandler(searchService),
		Cache:       handler.NewCacheHandler(refresher),
		Transfers:   handler.NewTransferHandler(tracker),
		Settings:    handler.NewSettingsHandler(settingsService),
		Health:      handler.NewHealthHandler(db),

		Hub:       hub,
		Validator: authService,
		Limiter:   middleware.NewRateLimiter(cfg.RateLimitRPM, log, settingsService),
		AuthLimit: middleware.NewRateLimiter(cfg.AuthRateLimitRPM, log, settingsService),

		SettingsProvider: settingsService,
		Logger:           log,

		RequestTimeout:    cfg.RequestTimeout,
		StreamMaxDuration: cfg.StreamMaxDuration,
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(deps, cfg.CORSOrigins),
		ReadTimeout:  cfg.ServerReadTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
		// WriteTimeout stays unset: download streams may outlive any
		// single value, the stream middleware bounds them instead.
	}

	return &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		store:  store,
		hub:    hub,
		server: server,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info(logger.CategorySystem, "server listening", map[string]any{
			"addr":        a.server.Addr,
			"storageRoot": a.cfg.StorageRoot,
		}, nil)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info(logger.CategorySystem, "shutting down", nil, nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)

	a.hub.Close()
	a.db.Close()
	if closeErr := a.store.Close(); err == nil {
		err = closeErr
	}
	a.log.Close()

	return err
}
