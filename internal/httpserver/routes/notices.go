package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/httpserver/handlers"
)

func init() { Register(registerNotices) }

func registerNotices(r chi.Router, d deps.Deps) {
	r.Get("/api/notices", handlers.Notices(d))
}
