package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Upstream weather API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={weather,forecast,suggest,nearby}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	QueryCache       *prometheus.CounterVec   // labels: endpoint, result={hit,miss}

	// Tile proxy metrics.
	TileRequests *prometheus.CounterVec // labels: layer, outcome={success,error,invalid}

	// Favorites metrics.
	FavoriteToggles *prometheus.CounterVec // labels: action={added,removed}
	FavoritesCount  prometheus.Gauge
	PersistErrors   prometheus.Counter
	PublishErrors   prometheus.Counter

	// Dashboard session metrics.
	StaleResults *prometheus.CounterVec // labels: query={search,suggest}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.QueryCache,
		m.TileRequests,
		m.FavoriteToggles,
		m.FavoritesCount,
		m.PersistErrors,
		m.PublishErrors,
		m.StaleResults,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Weather API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_total",
			Help:      "Query cache lookups by endpoint and result.",
		}, []string{"endpoint", "result"}),
		TileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tile_requests_total",
			Help:      "Map tile requests by layer and outcome.",
		}, []string{"layer", "outcome"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorites mutations by action.",
		}, []string{"action"}),
		FavoritesCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "favorites",
			Help:      "Number of cities in the favorites list.",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorites_persist_errors_total",
			Help:      "Failed writes of the favorites list to the key-value store.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorites_publish_errors_total",
			Help:      "Failed favorites change event publications.",
		}),
		StaleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Query results discarded because a newer query superseded them.",
		}, []string{"query"}),
	}
}
