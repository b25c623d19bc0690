//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/handler"
	"go-file-manager/internal/kv"
	"go-file-manager/internal/logger"
	"go-file-manager/internal/middleware"
	"go-file-manager/internal/model"
	"go-file-manager/internal/router"
	"go-file-manager/internal/service"
	"go-file-manager/internal/storage"
	"go-file-manager/internal/transfer"
	"go-file-manager/internal/websocket"
	"go-file-manager/pkg/fault"
)

const (
	adminToken  = "admin-token"
	editorToken = "editor-token"
	viewerToken = "viewer-token"
)

// staticValidator lets the suite exercise the protected surface without a
// database: three fixed tokens map onto the three roles.
type staticValidator struct{}

func (staticValidator) ValidateAccessToken(token string) (model.AuthClaims, error) {
	switch token {
	case adminToken:
		return model.AuthClaims{UserID: "u-admin", Username: "admin", Role: service.RoleAdmin}, nil
	case editorToken:
		return model.AuthClaims{UserID: "u-editor", Username: "editor", Role: service.RoleEditor}, nil
	case viewerToken:
		return model.AuthClaims{UserID: "u-viewer", Username: "viewer", Role: service.RoleViewer}, nil
	default:
		return model.AuthClaims{}, fault.New(fault.KindUnauthorized, "token is invalid or expired", "")
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.LevelError, Detailed: false, Console: io.Discard})

	local, err := storage.NewLocal(t.TempDir(), 0)
	require.NoError(t, err)

	store, err := kv.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	metadata := cache.NewMetadataCache(store, local, time.Minute, log)
	cached := cache.NewCachedAdapter(local, metadata)
	refresher := cache.NewRefreshController(metadata, local, log)
	tracker := transfer.NewTracker()

	hub := websocket.NewHub(log)
	hub.Attach(tracker)
	t.Cleanup(hub.Close)

	settingsService := service.NewSettingsService(t.Context(), store, log)
	directoryService := service.NewDirectoryService(cached, metadata, log)
	fileService := service.NewFileService(cached, tracker, settingsService, log, 10*1024*1024, nil)
	operationsService := service.NewOperationsService(cached, log)
	searchService := service.NewSearchService(cached, log, 10, 200, 10*time.Second)

	deps := router.Deps{
		Auth:        handler.NewAuthHandler(nil),
		Directories: handler.NewDirectoryHandler(directoryService),
		Files:       handler.NewFileHandler(fileService),
		Operations:  handler.NewOperationsHandler(operationsService),
		Search:      handler.NewSearchHandler(searchService),
		Cache:       handler.NewCacheHandler(refresher),
		Transfers:   handler.NewTransferHandler(tracker),
		Settings:    handler.NewSettingsHandler(settingsService),
		Health:      handler.NewHealthHandler(nil),

		Hub:       hub,
		Validator: staticValidator{},
		Limiter:   middleware.NewRateLimiter(10000, log, settingsService),
		AuthLimit: middleware.NewRateLimiter(10000, log, settingsService),

		SettingsProvider: settingsService,
		Logger:           log,

		RequestTimeout:    10 * time.Second,
		StreamMaxDuration: time.Minute,
	}

	server := httptest.NewServer(router.New(deps, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method string, url string, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) model.APIResponse {
	t.Helper()

	var parsed model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}
