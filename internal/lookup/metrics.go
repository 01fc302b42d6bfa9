package lookup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit         = "hit"
	resultMiss        = "miss"
	resultNotFound    = "not_found"
	resultUnavailable = "unavailable"
)

var (
	metricLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookshare",
		Subsystem: "lookup",
		Name:      "requests_total",
		Help:      "ISBN metadata lookups by outcome.",
	}, []string{"result"})
	metricRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bookshare",
		Subsystem: "lookup",
		Name:      "invalid_isbn_total",
		Help:      "Lookups refused because the identifier failed validation.",
	})
	metricUpstreamLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookshare",
		Subsystem: "lookup",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of Open Library calls, retries included.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func recordLookup(result string) {
	metricLookups.WithLabelValues(result).Inc()
}

func recordRejected() {
	metricRejected.Inc()
}

func observeUpstream(d time.Duration) {
	metricUpstreamLatency.Observe(d.Seconds())
}
