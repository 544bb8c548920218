package handlers

import (
	"net/http"
	"strings"

	"statusmirror/internal/httpserver/deps"
	"statusmirror/internal/logger"
)

// Config serves the outward /api/config contract. An omitted page parameter
// means the default page; an unknown one falls back to the first configured
// page inside the assembler.
func Config(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID := strings.TrimSpace(r.URL.Query().Get("page"))

		gc, err := d.Mirror.GetGlobalConfig(r.Context(), pageID)
		if err != nil {
			d.Logger.Error("config request failed",
				logger.String("page", pageID),
				logger.Error(err))
			writeAPIError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, d.APIMaxAge, gc)
	}
}
