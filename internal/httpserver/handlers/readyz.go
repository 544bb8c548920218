package handlers

import (
	"context"
	"net/http"
	"time"

	"statusmirror/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Cache string `json:"cache,omitempty"` // "ok" | "down", absent when disabled
}

// Readyz reports readiness. A down snapshot cache degrades service quality
// but does not block serving, so it is reported without failing the check.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{Ready: true}

		if d.Cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Cache.Ping(ctx); err != nil {
				resp.Cache = "down"
			} else {
				resp.Cache = "ok"
			}
		}

		writeJSON(w, http.StatusOK, 0, resp)
	}
}
