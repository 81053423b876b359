package internal

import (
	"net/http"
	"time"

	"asset-angel-api/internal/auth"
	"asset-angel-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics collection for HTTP requests, login
// outcomes and inventory levels
type Metrics struct {
	reqTotal   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
	logins     *prometheus.CounterVec
	registry   *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	logins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_angel_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	registry.MustRegister(reqTotal, reqLatency, logins)

	return &Metrics{
		reqTotal:   reqTotal,
		reqLatency: reqLatency,
		logins:     logins,
		registry:   registry,
	}
}

// ObserveLogin counts one login outcome. It is the Gate's login hook.
func (m *Metrics) ObserveLogin(result auth.LoginResult) {
	m.logins.WithLabelValues(string(result)).Inc()
}

// StatsSource reports current inventory levels
type StatsSource interface {
	Stats() models.DashboardStats
}

// RegisterStore exposes inventory gauges computed from src at scrape time
func (m *Metrics) RegisterStore(src StatsSource) error {
	return m.registry.Register(&storeCollector{
		src: src,
		assets: prometheus.NewDesc(
			"asset_angel_assets",
			"Assets by status",
			[]string{"status"}, nil,
		),
		pending: prometheus.NewDesc(
			"asset_angel_repair_requests_pending",
			"Repair requests awaiting triage",
			nil, nil,
		),
	})
}

type storeCollector struct {
	src     StatsSource
	assets  *prometheus.Desc
	pending *prometheus.Desc
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.assets
	ch <- c.pending
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	retired := st.TotalAssets - st.AssignedAssets - st.AvailableAssets - st.AssetsInMaintenance
	for status, n := range map[models.AssetStatus]int{
		models.StatusAvailable:   st.AvailableAssets,
		models.StatusAssigned:    st.AssignedAssets,
		models.StatusMaintenance: st.AssetsInMaintenance,
		models.StatusRetired:     retired,
	} {
		ch <- prometheus.MustNewConstMetric(c.assets, prometheus.GaugeValue, float64(n), string(status))
	}
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(st.PendingRepairRequests))
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer that captures the status code
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			// Process the request
			next.ServeHTTP(rw, r)

			// Get the path (use Chi's route pattern if available)
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			// Record metrics
			status := http.StatusText(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics and request logs
type statusRecorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.code = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(b)
}
