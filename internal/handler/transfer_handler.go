package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-file-manager/internal/transfer"
	"go-file-manager/internal/util"
)

type TransferHandler struct {
	tracker *transfer.Tracker
}

func NewTransferHandler(tracker *transfer.Tracker) *TransferHandler {
	return &TransferHandler{tracker: tracker}
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	util.WriteSuccess(w, http.StatusOK, h.tracker.List())
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	tr, err := h.tracker.Get(chi.URLParam(r, "id"))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, tr)
}

func (h *TransferHandler) Stats(w http.ResponseWriter, r *http.Request) {
	util.WriteSuccess(w, http.StatusOK, h.tracker.Stats())
}

func (h *TransferHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Remove(chi.URLParam(r, "id")); err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]any{"removed": true})
}
