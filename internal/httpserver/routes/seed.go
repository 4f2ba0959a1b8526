package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/handlers"
	"github.com/mkodama/tubemark/internal/httpserver/mw"
)

func init() { Register(registerSeed) }

func registerSeed(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger)).
		Post("/api/seed/reload", handlers.SeedReload(d))
}
