package handler

import (
	"net/http"

	"go-file-manager/internal/middleware"
	"go-file-manager/internal/model"
	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	util.WriteSuccess(w, http.StatusOK, h.settings.Current(r.Context()))
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	updated, err := h.settings.Update(r.Context(), middleware.IdentityFromRequest(r), req)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, updated)
}
