package prometheus

// AppMetrics holds every metric the platform emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Projection engine
	ProjectionsTotal    CounterVec
	ProjectionDuration  HistogramVec
	ProjectionClusters  HistogramVec
	ProjectionCacheHits CounterVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsPublished  CounterVec
	EventsConsumed   CounterVec

	// System health
	HealthCheckStatus GaugeVec
}

var (
	defaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	defaultProjectionDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30}
	defaultDBDurationBuckets         = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	defaultClusterCountBuckets       = []float64{1, 2, 3, 5, 8, 13, 21, 34}
)

// NewAppMetrics registers all application metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", defaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.ProjectionsTotal = collector.RegisterCounter("projections_total", "Opinion-space projections computed", "status", "bridges")
	m.ProjectionDuration = collector.RegisterHistogram("projection_duration_seconds", "Opinion-space projection duration", defaultProjectionDurationBuckets, "bridges")
	m.ProjectionClusters = collector.RegisterHistogram("projection_cluster_count", "Clusters per computed projection", defaultClusterCountBuckets)
	m.ProjectionCacheHits = collector.RegisterCounter("projection_cache_hits_total", "Projection cache hits", "result")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", defaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Kafka events published", "topic", "status")
	m.EventsConsumed = collector.RegisterCounter("events_consumed_total", "Kafka events consumed", "topic", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}
