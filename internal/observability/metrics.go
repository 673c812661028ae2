package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "plot_catalog"

// Metrics holds the Prometheus counters, histograms, and gauges for the catalog.
type Metrics struct {
	// Thumbnail resolution.
	ThumbnailCache *prometheus.CounterVec // labels: result={hit,miss}
	ThumbnailTier  *prometheus.CounterVec // labels: tier={hhz_full,...,none}
	ScansTotal     prometheus.Counter
	ScanDuration   prometheus.Histogram
	FilesScanned   prometheus.Counter
	ScanErrors     prometheus.Counter

	// Search.
	SearchRequests *prometheus.CounterVec // labels: kind={empty,redirect,substring}
	SearchMatches  prometheus.Histogram

	// Metadata and change feed.
	MetadataRecords      prometheus.Gauge
	CacheInvalidations   prometheus.Counter
	ChangeFeedRunning    prometheus.Gauge
	ChangeFeedMessages   prometheus.Counter
	ChangeFeedBadMessage prometheus.Counter
}

// NewMetrics creates and registers all catalog metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ThumbnailCache,
		m.ThumbnailTier,
		m.ScansTotal,
		m.ScanDuration,
		m.FilesScanned,
		m.ScanErrors,
		m.SearchRequests,
		m.SearchMatches,
		m.MetadataRecords,
		m.CacheInvalidations,
		m.ChangeFeedRunning,
		m.ChangeFeedMessages,
		m.ChangeFeedBadMessage,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ThumbnailCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_cache_total",
			Help:      "Thumbnail cache lookups by result.",
		}, []string{"result"}),
		ThumbnailTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_tier_total",
			Help:      "Thumbnails resolved by scanning, by the priority tier that produced them.",
		}, []string{"tier"}),
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Total archive subtree scans.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of a thumbnail subtree scan.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Total files visited by subtree scans.",
		}),
		ScanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_errors_total",
			Help:      "Scans aborted by an I/O error, timeout or cancellation.",
		}),
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search queries by kind.",
		}, []string{"kind"}),
		SearchMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_matches",
			Help:      "Number of stations matched per substring search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		MetadataRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metadata_records",
			Help:      "Station metadata records loaded at startup.",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_cache_invalidations_total",
			Help:      "Thumbnail cache entries dropped by change notifications.",
		}),
		ChangeFeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "change_feed_running",
			Help:      "1 when the plot change feed consumer is active, 0 otherwise.",
		}),
		ChangeFeedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_feed_messages_total",
			Help:      "Plot change notifications consumed.",
		}),
		ChangeFeedBadMessage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_feed_invalid_messages_total",
			Help:      "Plot change notifications that named no valid archive node.",
		}),
	}
}
