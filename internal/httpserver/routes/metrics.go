package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/mw"
	"github.com/mkodama/tubemark/internal/metrics"
)

func init() { Register(registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).
		Get("/metrics", metrics.Handler(d.Gatherer).ServeHTTP)
}
