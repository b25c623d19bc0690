package util

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-file-manager/internal/model"
	"go-file-manager/pkg/fault"
)

var kindStatus = map[fault.Kind]int{
	fault.KindInvalidPath:      http.StatusBadRequest,
	fault.KindBadRequest:       http.StatusBadRequest,
	fault.KindUnauthorized:     http.StatusUnauthorized,
	fault.KindForbidden:        http.StatusForbidden,
	fault.KindNotFound:         http.StatusNotFound,
	fault.KindUnknownTransfer:  http.StatusNotFound,
	fault.KindAlreadyExists:    http.StatusConflict,
	fault.KindNotADirectory:    http.StatusConflict,
	fault.KindIsADirectory:     http.StatusConflict,
	fault.KindScanBusy:         http.StatusConflict,
	fault.KindPermissionDenied: http.StatusForbidden,
	fault.KindCacheUnavailable: http.StatusServiceUnavailable,
	fault.KindIO:               http.StatusInternalServerError,
}

// StatusForKind maps an error kind to its HTTP status; unknown kinds are
// internal errors.
func StatusForKind(kind fault.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, model.APIResponse{Success: true, Data: data})
}

func WriteSuccessMeta(w http.ResponseWriter, status int, data any, meta model.Meta) {
	WriteJSON(w, status, model.APIResponse{Success: true, Data: data, Meta: &meta})
}

// WriteError renders an error envelope. Internal causes are hidden behind
// a generic message so stack details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		WriteJSON(w, http.StatusInternalServerError, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: string(fault.KindIO), Message: "internal server error"},
		})
		return
	}

	status := StatusForKind(fe.Kind)
	message := fe.Message
	details := fe.Details
	if status == http.StatusInternalServerError {
		message = "internal server error"
		details = ""
	}

	WriteJSON(w, status, model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: string(fe.Kind), Message: message, Details: details},
	})
}
