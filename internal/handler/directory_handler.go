package handler

import (
	"net/http"
	"strconv"

	"go-file-manager/internal/middleware"
	"go-file-manager/internal/model"
	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
)

type DirectoryHandler struct {
	directories *service.DirectoryService
}

func NewDirectoryHandler(directories *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directories: directories}
}

// List serves a sorted, paginated directory listing. The path defaults to
// the root.
func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	opts := service.ListOptions{
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("order"),
		Page:      intQuery(query.Get("page")),
		Limit:     intQuery(query.Get("limit")),
	}

	listing, meta, err := h.directories.List(r.Context(), query.Get("path"), opts)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccessMeta(w, http.StatusOK, listing, meta)
}

func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DirectoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	entry, err := h.directories.Create(r.Context(), middleware.IdentityFromRequest(r), req.Path, req.Name)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusCreated, entry)
}

func (h *DirectoryHandler) Stat(w http.ResponseWriter, r *http.Request) {
	entry, err := h.directories.Stat(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, entry)
}

// Generation lets clients poll for tree changes without refetching
// listings.
func (h *DirectoryHandler) Generation(w http.ResponseWriter, r *http.Request) {
	generation, err := h.directories.Generation(r.Context())
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]any{"generation": generation})
}

func intQuery(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
