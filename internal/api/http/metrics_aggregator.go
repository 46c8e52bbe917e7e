package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
)

// MetricsAggregator summarizes the process metrics as JSON for dashboards
// that do not scrape Prometheus.
type MetricsAggregator struct {
	metrics *monitoring.Metrics
	store   *blobstore.Guarded
}

// NewMetricsAggregator creates a metrics aggregator. store may be nil.
func NewMetricsAggregator(metrics *monitoring.Metrics, store *blobstore.Guarded) *MetricsAggregator {
	return &MetricsAggregator{metrics: metrics, store: store}
}

// MetricsSnapshot represents a snapshot of the service metrics
type MetricsSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Backend   monitoring.Snapshot `json:"backend"`
	Store     *StoreSummary       `json:"store,omitempty"`
	Summary   MetricsSummary      `json:"summary"`
}

// StoreSummary reports the durable store's circuit breaker.
type StoreSummary struct {
	Breaker             string `json:"breaker"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// MetricsSummary provides high-level metrics
type MetricsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	ActiveSessions    int64   `json:"active_sessions"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// GetAggregatedMetrics returns the JSON snapshot
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	snap := ma.metrics.Snapshot()
	out := MetricsSnapshot{
		Timestamp: time.Now(),
		Backend:   snap,
		Summary:   summarize(snap),
	}
	if ma.store != nil {
		b := ma.store.Breaker()
		out.Store = &StoreSummary{
			Breaker:             b.State().String(),
			ConsecutiveFailures: b.Counts().ConsecutiveFailures,
		}
	}
	c.JSON(http.StatusOK, out)
}

func summarize(s monitoring.Snapshot) MetricsSummary {
	var errorRate float64
	if s.TotalRequests > 0 {
		errorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	return MetricsSummary{
		TotalRequests:     s.TotalRequests,
		AverageLatencyMs:  s.AvgLatencySeconds * 1000,
		ErrorRate:         errorRate,
		ActiveSessions:    s.ActiveSessions,
		ActiveConnections: s.ActiveConnections,
		UptimeSeconds:     s.UptimeSeconds,
	}
}
