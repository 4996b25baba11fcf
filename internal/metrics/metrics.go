package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowcrawler_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shadowcrawler_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowcrawler_db_queries_total",
			Help: "Total number of catalog database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shadowcrawler_db_query_duration_seconds",
			Help:    "Catalog database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_db_connections_open",
			Help: "Number of open catalog database connections",
		},
	)
)

// Crawler metrics
var (
	CrawlerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_crawler_runs_total",
			Help: "Total number of crawl runs",
		},
	)

	CrawlerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_crawler_running",
			Help: "Whether a crawl is currently running (1 = running, 0 = idle)",
		},
	)

	CrawlerFilesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_crawler_files_indexed_total",
			Help: "Total number of video files indexed across all crawls",
		},
	)

	CrawlerFilesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_crawler_files_skipped_total",
			Help: "Total number of files skipped because the stored record was current",
		},
	)

	CrawlerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_crawler_errors_total",
			Help: "Total number of crawl errors",
		},
	)

	CrawlerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_crawler_last_run_timestamp",
			Help: "Unix timestamp of the last completed crawl",
		},
	)

	CrawlerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_crawler_last_run_duration_seconds",
			Help: "Duration of the last completed crawl in seconds",
		},
	)

	CrawlerLanes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_crawler_lanes",
			Help: "Number of lanes used by the last crawl",
		},
	)
)

// Probe / thumbnail metrics
var (
	ProbeInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowcrawler_probe_invocations_total",
			Help: "Total number of ffprobe invocations",
		},
		[]string{"status"}, // "success", "no_stream", "error"
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shadowcrawler_probe_duration_seconds",
			Help:    "ffprobe invocation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowcrawler_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"}, // "success", "fallback", "error"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shadowcrawler_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Storage analyzer metrics
var (
	StorageAnalyzerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_storage_analyzer_runs_total",
			Help: "Total number of storage analysis runs",
		},
	)

	StorageAnalyzerFilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shadowcrawler_storage_analyzer_files_scanned_total",
			Help: "Total number of files scanned by the storage analyzer",
		},
	)

	StorageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shadowcrawler_storage_cache_lookups_total",
			Help: "Storage stats cache lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "miss", "stale"
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shadowcrawler_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
