package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mkodama/tubemark/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Videos        int     `json:"videos"`
	Redis         string  `json:"redis"`
	Provider      string  `json:"provider"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		provider := "configured"
		if !d.Gateway.Configured() {
			provider = "unconfigured"
		}

		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(start).Seconds(),
			Videos:        d.Store.Len(),
			Redis:         checkRedis(d),
			Provider:      provider,
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}

func checkRedis(d deps.Deps) string {
	if d.RedisClient == nil {
		return "not initialized"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return "unreachable"
	}
	return "ok"
}
