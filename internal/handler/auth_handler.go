package handler

import (
	"net/http"

	"go-file-manager/internal/middleware"
	"go-file-manager/internal/model"
	"go-file-manager/internal/service"
	"go-file-manager/internal/util"
	"go-file-manager/pkg/fault"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	pair, err := h.auth.Login(r.Context(), req, middleware.IdentityFromRequest(r))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, pair)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req, middleware.IdentityFromRequest(r))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusCreated, user)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken, middleware.IdentityFromRequest(r))
	if err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		util.WriteError(w, err)
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken, middleware.IdentityFromRequest(r)); err != nil {
		util.WriteError(w, err)
		return
	}

	util.WriteSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

// Me echoes the authenticated principal from the verified claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		util.WriteError(w, fault.New(fault.KindUnauthorized, "authentication required", ""))
		return
	}

	util.WriteSuccess(w, http.StatusOK, model.AuthUser{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
}
