package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/handlers"
	"github.com/mkodama/tubemark/internal/httpserver/mw"
)

func init() { Register(registerVideos) }

func registerVideos(r chi.Router, d deps.Deps) {
	r.Route("/api/videos", func(r chi.Router) {
		r.Get("/", handlers.ListVideos(d))

		// Mutations burn provider quota; gate them harder.
		r.With(
			mw.EnforceHost(d.AllowedHosts, d.Logger),
			mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.RateBurst,
				RefillPerIPPerMin: d.RateRefillPerMin,
				TrustProxy:        d.TrustProxy,
			}),
		).Post("/", handlers.AddVideo(d))

		r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Delete("/{index}", handlers.RemoveVideo(d))

		r.Route("/{index}/subtitle", func(r chi.Router) {
			r.Get("/", handlers.DownloadSubtitle(d))
			r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Put("/", handlers.AttachSubtitle(d))
			r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Delete("/", handlers.DetachSubtitle(d))
		})
	})
}
