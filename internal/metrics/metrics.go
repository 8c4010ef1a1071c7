// Package metrics exposes Prometheus collectors for fetches, the event
// cache, renders and visitor sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launchcal"

// Fetch results
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultStale = "stale"
)

// Registry holds every collector of the service
var Registry = prometheus.NewRegistry()

var (
	fetchTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Month fetches by result.",
	}, []string{"result"})

	fetchDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching a month of events.",
		Buckets:   prometheus.DefBuckets,
	})

	cacheTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Event cache lookups by outcome.",
	}, []string{"outcome"})

	rendersTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Calendar render cycles by view.",
	}, []string{"view"})

	sessions = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Active visitor sessions.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveFetch records the outcome and latency of a month fetch
func ObserveFetch(result string, d time.Duration) {
	fetchTotal.WithLabelValues(result).Inc()
	fetchDuration.Observe(d.Seconds())
}

// IncCacheHit counts a cache lookup that was served from the cache
func IncCacheHit() {
	cacheTotal.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a cache lookup that went to the source
func IncCacheMiss() {
	cacheTotal.WithLabelValues("miss").Inc()
}

// IncRender counts a render cycle of the named view
func IncRender(view string) {
	rendersTotal.WithLabelValues(view).Inc()
}

// SetSessions reports the number of live visitor sessions
func SetSessions(n int) {
	sessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
