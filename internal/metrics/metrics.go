// Package metrics collects and exposes prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcome label values.
const (
	OutcomeOK            = "ok"
	OutcomeQuota         = "quota"
	OutcomeNotFound      = "not_found"
	OutcomeProviderError = "provider_error"
	OutcomeTransport     = "transport"
	OutcomeUnconfigured  = "unconfigured"
)

// Collector registers and records the service metrics.
type Collector struct {
	fetchTotal     *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	collectionSize prometheus.Gauge
	subtitleOps    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tubemark_metadata_fetch_total",
			Help: "Provider metadata fetches, by outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tubemark_metadata_fetch_seconds",
			Help:    "Latency of provider metadata fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		collectionSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tubemark_collection_videos",
			Help: "Number of videos currently in the collection.",
		}),
		subtitleOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tubemark_subtitle_ops_total",
			Help: "Subtitle operations (attach, detach, download).",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.fetchTotal,
		c.fetchLatency,
		c.collectionSize,
		c.subtitleOps,
	)

	return c
}

// RecordFetch records one provider fetch with its outcome and latency.
func (c *Collector) RecordFetch(outcome string, duration time.Duration) {
	c.fetchTotal.WithLabelValues(outcome).Inc()
	c.fetchLatency.Observe(duration.Seconds())
}

// SetCollectionSize updates the collection size gauge.
func (c *Collector) SetCollectionSize(n int) {
	c.collectionSize.Set(float64(n))
}

// RecordSubtitleOp records a subtitle attach or detach.
func (c *Collector) RecordSubtitleOp(op string) {
	c.subtitleOps.WithLabelValues(op).Inc()
}

// Handler returns the prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
