package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/handlers"
	"github.com/mkodama/tubemark/internal/httpserver/mw"
)

func init() { Register(registerYouTube) }

func registerYouTube(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RateRefillPerMin,
		TrustProxy:        d.TrustProxy,
	})).Get("/api/youtube", handlers.YouTubeProxy(d))
}
