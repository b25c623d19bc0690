package handler

import (
	"net/http"

	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.search.Search(r.Context(), query.Get("path"), query.Get("q"))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, result)
}
