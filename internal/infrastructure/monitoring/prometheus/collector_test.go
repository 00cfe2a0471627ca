package prometheus

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "opinionspace"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestCounterRegistrationAndScrape(t *testing.T) {
	c := newTestCollector(t)

	vec := c.RegisterCounter("requests_total", "Total requests", "method")
	vec.WithLabelValues("GET").Inc()
	vec.WithLabelValues("GET").Add(2)

	body := scrape(t, c)
	assert.Contains(t, body, `opinionspace_requests_total{method="GET"} 3`)
}

func TestGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)

	g := c.RegisterGauge("active", "Active requests", "method")
	g.WithLabelValues("GET").Inc()
	g.WithLabelValues("GET").Inc()
	g.WithLabelValues("GET").Dec()

	h := c.RegisterHistogram("duration_seconds", "Duration", []float64{0.1, 1}, "path")
	h.WithLabelValues("/x").Observe(0.05)
	h.WithLabelValues("/x").Observe(0.5)

	body := scrape(t, c)
	assert.Contains(t, body, `opinionspace_active{method="GET"} 1`)
	assert.Contains(t, body, `opinionspace_duration_seconds_bucket{path="/x",le="0.1"} 1`)
	assert.Contains(t, body, `opinionspace_duration_seconds_count{path="/x"} 2`)
}

func TestDuplicateRegistrationReturnsSameCollector(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dups_total", "Duplicates", "kind")
	second := c.RegisterCounter("dups_total", "Duplicates", "kind")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `opinionspace_dups_total{kind="a"} 2`)
}

func TestConflictingRegistrationFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)

	c.RegisterCounter("conflict_total", "First", "a")
	// Same name, different type: registration fails and a noop comes back.
	g := c.RegisterGauge("conflict_total", "Second", "a")
	g.WithLabelValues("x").Set(42) // must not panic

	body := scrape(t, c)
	assert.False(t, strings.Contains(body, "conflict_total{a=\"x\"} 42"))
}

func TestNewAppMetricsRegistersEverything(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/simulations", "200").Inc()
	m.ProjectionsTotal.WithLabelValues("ok", "true").Inc()
	m.ProjectionDuration.WithLabelValues("false").Observe(0.02)
	m.ProjectionCacheHits.WithLabelValues("hit").Inc()
	m.HealthCheckStatus.WithLabelValues("postgres").Set(1)

	body := scrape(t, c)
	assert.Contains(t, body, "opinionspace_http_requests_total")
	assert.Contains(t, body, "opinionspace_projections_total")
	assert.Contains(t, body, "opinionspace_projection_duration_seconds_count")
	assert.Contains(t, body, "opinionspace_projection_cache_hits_total")
	assert.Contains(t, body, `opinionspace_health_check_status{component="postgres"} 1`)
}
