package deps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/notify"
	"github.com/mkodama/tubemark/internal/store"
	"github.com/mkodama/tubemark/internal/youtube"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time       // for testing, defaults to time.Now
	AllowedHosts      []string               // Host headers allowed on mutating endpoints
	AllowedCIDRS      []string               // IPs allowed to access ops endpoints
	TrustProxy        bool                   // true if running behind a trusted reverse proxy
	RedisClient       *redis.Client          // Redis client connection
	Store             *store.CollectionStore // In-memory collection backed by the persistence slot
	Gateway           *youtube.Client        // Metadata provider client
	VideoMapper       *youtube.Mapper        // Provider item -> display record
	Notices           *notify.Center         // Transient operation notices
	Metrics           *metrics.Collector     // Prometheus instrumentation
	Gatherer          prometheus.Gatherer    // Registry behind /metrics
	FetchGate         chan struct{}          // Capacity-1 gate: one provider fetch in flight
	SeedReloadTrigger chan struct{}          // Channel to trigger manual seed reload (nil if seeding disabled)
	RateBurst         int
	RateRefillPerMin  int
}
