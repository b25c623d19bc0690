package handler

import (
	"net/http"

	"go-file-manager/internal/middleware"
	"go-file-manager/internal/model"
	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
)

type OperationsHandler struct {
	operations *service.OperationsService
}

func NewOperationsHandler(operations *service.OperationsService) *OperationsHandler {
	return &OperationsHandler{operations: operations}
}

func (h *OperationsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	result, err := h.operations.Rename(r.Context(), middleware.IdentityFromRequest(r), req.Path, req.NewName)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, result)
}

func (h *OperationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	result, err := h.operations.Delete(r.Context(), middleware.IdentityFromRequest(r), req.Paths)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, result)
}

func (h *OperationsHandler) Paste(w http.ResponseWriter, r *http.Request) {
	var req model.PasteRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	result, err := h.operations.Paste(r.Context(), middleware.IdentityFromRequest(r), req)
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, result)
}
