package handler

import (
	"net/http"

	"go-file-manager/internal/cache"
	"go-file-manager/internal/model"
	"go-file-manager/internal/util"
)

type CacheHandler struct {
	refresher *cache.RefreshController
}

func NewCacheHandler(refresher *cache.RefreshController) *CacheHandler {
	return &CacheHandler{refresher: refresher}
}

// Refresh kicks off a cache refresh and replies with the resulting
// progress snapshot. When a refresh is already running the live snapshot
// comes back, or 409 when the caller asked for strict semantics.
func (h *CacheHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshCacheRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	strategy := model.RefreshStrategy(req.Strategy)
	if req.Strategy == "" {
		strategy = model.StrategyFast
	}

	progress, err := h.refresher.Refresh(r.Context(), strategy, req.Path, req.Strict)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, progress)
}

func (h *CacheHandler) Progress(w http.ResponseWriter, r *http.Request) {
	util.WriteSuccess(w, http.StatusOK, h.refresher.Progress())
}
