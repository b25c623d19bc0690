//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/internal/model"
)

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/directories?path=/", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	parsed := decodeBody(t, resp)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "UNAUTHORIZED", parsed.Error.Code)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/directories?path=/", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestViewerCannotMutate(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/directories", viewerToken,
		model.DirectoryCreateRequest{Path: "/", Name: "blocked"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/directories?path=/", viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	parsed := decodeBody(t, resp)
	listing := parsed.Data.(map[string]any)
	assert.Empty(t, listing["entries"])
}

func TestAdminOnlyEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/cache/refresh", editorToken,
		model.RefreshCacheRequest{Strategy: "fast"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/cache/refresh", adminToken,
		model.RefreshCacheRequest{Strategy: "fast"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	next := model.DefaultSettings()
	next.CSP = false
	resp = doJSON(t, http.MethodPut, server.URL+"/api/v1/settings", editorToken, next)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, server.URL+"/api/v1/settings", adminToken, next)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	parsed := decodeBody(t, resp)
	settings := parsed.Data.(map[string]any)
	assert.Equal(t, false, settings["csp"])
}

func TestPathTraversalRejected(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/directories?path=../../etc", viewerToken, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	parsed := decodeBody(t, resp)
	require.NotNil(t, parsed.Error)
	assert.Equal(t, "INVALID_PATH", parsed.Error.Code)
}

func TestCacheGenerationAdvances(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/cache/generation", viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	before := decodeBody(t, resp).Data.(map[string]any)["generation"].(float64)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/directories", editorToken,
		model.DirectoryCreateRequest{Path: "/", Name: "bump"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/cache/generation", viewerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := decodeBody(t, resp).Data.(map[string]any)["generation"].(float64)
	assert.Greater(t, after, before)
}
