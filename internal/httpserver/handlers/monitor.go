package handlers

import (
	"net/http"
	"strings"

	"statusmirror/internal/httpserver/deps"
	"statusmirror/internal/logger"
)

// Monitor serves the outward /api/monitor contract: monitor groups from the
// scraped page joined with the heartbeat/uptime series from the upstream API.
func Monitor(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID := strings.TrimSpace(r.URL.Query().Get("page"))

		md, err := d.Mirror.GetMonitor(r.Context(), pageID)
		if err != nil {
			d.Logger.Error("monitor request failed",
				logger.String("page", pageID),
				logger.Error(err))
			writeAPIError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, d.APIMaxAge, md)
	}
}
