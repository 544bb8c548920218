package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"statusmirror/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON encodes v with a public Cache-Control when maxAge > 0. The
// outward contracts are small; encoding failures after the header is written
// are not recoverable and are ignored like everywhere else in this codebase.
func writeJSON(w http.ResponseWriter, status int, maxAge time.Duration, v any) {
	w.Header().Set("Content-Type", "application/json")
	if maxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps the pipeline error taxonomy onto HTTP statuses:
// upstream trouble (unreachable, error body, unrecognizable page) is a bad
// gateway, a sanitizer defect is our own server error.
func statusForError(err error) int {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Unreachable {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	var notFound *domain.PayloadNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeAPIError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), 0, errorResponse{Success: false, Error: err.Error()})
}
