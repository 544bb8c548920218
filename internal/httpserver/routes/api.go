package routes

import (
	"github.com/go-chi/chi/v5"

	"statusmirror/internal/httpserver/deps"
	"statusmirror/internal/httpserver/handlers"
	"statusmirror/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

// registerAPI wires the two outward JSON contracts. The rate limiter and the
// optional host check guard only this public surface, not the ops endpoints.
func registerAPI(r chi.Router, d deps.Deps) {
	api := r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateBurst,
			RefillPerIPPerMin: d.RateRefill,
			TrustProxy:        d.TrustProxy,
		}),
	)
	api.Get("/api/config", handlers.Config(d))
	api.Get("/api/monitor", handlers.Monitor(d))
}
