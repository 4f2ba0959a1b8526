package handlers

import (
	"net/http"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
	"github.com/mkodama/tubemark/internal/logger"
)

// SeedReload triggers an immediate pass over the seed file.
func SeedReload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.SeedReloadTrigger == nil {
			writeError(w, http.StatusNotFound, "seeding not configured")
			return
		}

		select {
		case d.SeedReloadTrigger <- struct{}{}:
			d.Logger.Info("manual seed reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]bool{"triggered": true})
		default:
			d.Logger.Warn("seed reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeError(w, http.StatusTooManyRequests, "reload already in progress")
		}
	}
}
