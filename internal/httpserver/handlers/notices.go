package handlers

import (
	"net/http"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/notify"
)

type noticesResponse struct {
	Notices []*notify.Notice `json:"notices"`
}

// Notices returns the currently active transient notices.
func Notices(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, noticesResponse{
			Notices: d.Notices.Active(),
		})
	}
}
