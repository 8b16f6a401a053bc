package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Store metrics
	StoreCalls    *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
	StoreErrors   *prometheus.CounterVec

	// Shell metrics
	ShellCommands *prometheus.CounterVec

	// Fetch metrics
	FetchRequests *prometheus.CounterVec
	FetchBytes    prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	StoreCalls        int64   `json:"store_calls"`
	StoreErrors       int64   `json:"store_errors"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"total_duration_seconds"` // sum of all request durations
	RequestCount      int64   `json:"request_count"`          // count for averaging
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector registered with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers all collectors with reg. Tests pass a fresh
// prometheus.NewRegistry() so collectors never clash.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docfs_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docfs_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docfs_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Store metrics
		StoreCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_store_calls_total",
				Help: "Total number of entry store calls",
			},
			[]string{"backend", "op", "status"},
		),
		StoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docfs_store_duration_seconds",
				Help:    "Entry store call duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "op"},
		),
		StoreErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_store_errors_total",
				Help: "Total number of entry store errors",
			},
			[]string{"backend", "op"},
		),

		// Shell metrics
		ShellCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_shell_commands_total",
				Help: "Total number of shell commands executed",
			},
			[]string{"verb", "status"},
		),

		// Fetch metrics
		FetchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_fetch_requests_total",
				Help: "Total number of outbound fetches",
			},
			[]string{"method", "status"},
		),
		FetchBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "docfs_fetch_bytes_total",
				Help: "Total response bytes received by fetch",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "docfs_ws_connections",
				Help: "Number of active WebSocket shell connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfs_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "docfs_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordStoreCall records one call to the entry store
func (m *Metrics) RecordStoreCall(backend, op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.StoreErrors.WithLabelValues(backend, op).Inc()
	}
	m.StoreCalls.WithLabelValues(backend, op, status).Inc()
	m.StoreDuration.WithLabelValues(backend, op).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.StoreCalls++
	if err != nil {
		m.snapshot.StoreErrors++
	}
	m.mu.Unlock()
}

// RecordShellCommand records a dispatched shell verb
func (m *Metrics) RecordShellCommand(verb string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ShellCommands.WithLabelValues(verb, status).Inc()
}

// RecordFetch records an outbound fetch and its body size
func (m *Metrics) RecordFetch(method, status string, bytes int) {
	m.FetchRequests.WithLabelValues(method, status).Inc()
	if bytes > 0 {
		m.FetchBytes.Add(float64(bytes))
	}
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
