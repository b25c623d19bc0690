package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-file-manager/pkg/fault"
)

const maxJSONBody = 1 << 20 // 1 MiB

// decodeJSON parses a request body into dst, rejecting oversized bodies
// and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fault.New(fault.KindBadRequest, "request body is empty", "")
		}
		return fault.Wrap(fault.KindBadRequest, "invalid JSON body", err)
	}

	if decoder.More() {
		return fault.New(fault.KindBadRequest, "request body contains trailing data", "")
	}

	return nil
}
