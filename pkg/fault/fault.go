package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error surfaced by the file service core. The REST
// layer maps kinds to HTTP statuses; the core itself never carries one.
type Kind string

const (
	KindInvalidPath      Kind = "INVALID_PATH"
	KindNotFound         Kind = "NOT_FOUND"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNotADirectory    Kind = "NOT_A_DIRECTORY"
	KindIsADirectory     Kind = "IS_A_DIRECTORY"
	KindIO               Kind = "IO"
	KindUnknownTransfer  Kind = "UNKNOWN_TRANSFER"
	KindCacheUnavailable Kind = "CACHE_UNAVAILABLE"
	KindScanBusy         Kind = "SCAN_BUSY"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindBadRequest       Kind = "BAD_REQUEST"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, message string, details string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func Wrap(kind Kind, message string, cause error) *Error {
	details := ""
	if cause != nil {
		details = cause.Error()
	}

	return &Error{Kind: kind, Message: message, Details: details, cause: cause}
}

// KindOf returns the Kind carried by err, or "" when err is not a fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
