package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several can coexist in one process. All Record methods are no-ops on a
// nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsEvicted prometheus.Counter

	// Desktop metrics
	WindowOps *prometheus.CounterVec
	FSOps     *prometheus.CounterVec
	DragDrops *prometheus.CounterVec

	// Persistence metrics
	StoreOps       *prometheus.CounterVec
	StoreDuration  *prometheus.HistogramVec
	PersistQueue   prometheus.Gauge
	PersistDropped prometheus.Counter
	BreakerState   *prometheus.GaugeVec
	TreeFallbacks  *prometheus.CounterVec
	PersistedBytes prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds current values for the JSON stats endpoint.
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveSessions    int64   `json:"active_sessions"`
	ActiveConnections int64   `json:"active_connections"`
	AvgLatencySeconds float64 `json:"avg_latency_seconds"`
	UptimeSeconds     float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webdesk_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "webdesk_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),

		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "webdesk_sessions_active",
			Help: "Number of desktop sessions held in memory",
		}),
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "webdesk_sessions_created_total",
			Help: "Desktop sessions created or resumed",
		}),
		SessionsEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "webdesk_sessions_evicted_total",
			Help: "Idle desktop sessions evicted from memory",
		}),

		WindowOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_window_ops_total",
				Help: "Window operations by kind of operation",
			},
			[]string{"op"},
		),
		FSOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_fs_ops_total",
				Help: "Virtual file system operations by outcome",
			},
			[]string{"op", "result"},
		),
		DragDrops: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_drag_commits_total",
				Help: "Completed drag gestures by action",
			},
			[]string{"action"},
		),

		StoreOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_store_ops_total",
				Help: "Blob store calls by backend, operation and status",
			},
			[]string{"backend", "op", "status"},
		),
		StoreDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webdesk_store_duration_seconds",
				Help:    "Blob store call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"backend", "op"},
		),
		PersistQueue: f.NewGauge(prometheus.GaugeOpts{
			Name: "webdesk_persist_queue_depth",
			Help: "Snapshots waiting to be written",
		}),
		PersistDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "webdesk_persist_superseded_total",
			Help: "Queued snapshots replaced by a newer one before being written",
		}),
		BreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "webdesk_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		TreeFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_tree_fallbacks_total",
				Help: "Sessions that started from the default tree, by reason",
			},
			[]string{"reason"},
		),
		PersistedBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "webdesk_persisted_tree_bytes",
			Help:    "Encoded size of persisted trees",
			Buckets: prometheus.ExponentialBuckets(512, 4, 8),
		}),

		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "webdesk_ws_connections",
			Help: "Number of active WebSocket connections",
		}),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webdesk_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "webdesk_uptime_seconds",
		Help: "Service uptime in seconds",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request.
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// SetSessionsActive sets the number of in-memory sessions
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// IncSessionsCreated increments the sessions created counter
func (m *Metrics) IncSessionsCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
}

// IncSessionsEvicted increments the sessions evicted counter
func (m *Metrics) IncSessionsEvicted(n int) {
	if m == nil {
		return
	}
	m.SessionsEvicted.Add(float64(n))
}

// RecordWindowOp counts a window operation
func (m *Metrics) RecordWindowOp(op string) {
	if m == nil {
		return
	}
	m.WindowOps.WithLabelValues(op).Inc()
}

// RecordFSOp counts a file system operation and whether it applied
func (m *Metrics) RecordFSOp(op string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.FSOps.WithLabelValues(op, result).Inc()
}

// RecordDragCommit counts a finished drag gesture
func (m *Metrics) RecordDragCommit(action string) {
	if m == nil {
		return
	}
	m.DragDrops.WithLabelValues(action).Inc()
}

// RecordStoreOp records one blob store call
func (m *Metrics) RecordStoreOp(backend, op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.StoreOps.WithLabelValues(backend, op, status).Inc()
	m.StoreDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// SetPersistQueue sets the persistence backlog
func (m *Metrics) SetPersistQueue(depth int) {
	if m == nil {
		return
	}
	m.PersistQueue.Set(float64(depth))
}

// IncPersistSuperseded counts a queued snapshot replaced before writing
func (m *Metrics) IncPersistSuperseded() {
	if m == nil {
		return
	}
	m.PersistDropped.Inc()
}

// ObservePersistedBytes records the size of a written tree
func (m *Metrics) ObservePersistedBytes(n int) {
	if m == nil {
		return
	}
	m.PersistedBytes.Observe(float64(n))
}

// SetBreakerState records a circuit breaker transition
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// IncTreeFallback counts a session started from the default tree
func (m *Metrics) IncTreeFallback(reason string) {
	if m == nil {
		return
	}
	m.TreeFallbacks.WithLabelValues(reason).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current summary values.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencySeconds = s.totalDuration / float64(s.TotalRequests)
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
