package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all client-level metrics (not resource-specific)
type Metrics struct {
	// Adapter metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Flow metrics
	FlowRuns     *prometheus.CounterVec
	FlowDuration *prometheus.HistogramVec
	FlowFailures *prometheus.CounterVec

	// Entity store metrics
	EntityCount *prometheus.GaugeVec
	StoreMerges *prometheus.CounterVec

	// State metrics
	FlashMessages *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all client metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movekit",
				Subsystem: "requests",
				Name:      "total",
				Help:      "Total number of API requests by resource, operation and status",
			},
			[]string{"resource", "operation", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "movekit",
				Subsystem: "requests",
				Name:      "duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "operation"},
		),

		FlowRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movekit",
				Subsystem: "flows",
				Name:      "runs_total",
				Help:      "Total number of orchestrator flow runs by flow and terminal status",
			},
			[]string{"flow", "status"},
		),

		FlowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "movekit",
				Subsystem: "flows",
				Name:      "duration_seconds",
				Help:      "Flow run duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"flow"},
		),

		FlowFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movekit",
				Subsystem: "flows",
				Name:      "failures_total",
				Help:      "Total number of flow failures by flow and error class",
			},
			[]string{"flow", "class"},
		),

		EntityCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "movekit",
				Subsystem: "store",
				Name:      "entities",
				Help:      "Current number of records per entity type",
			},
			[]string{"entity_type"},
		),

		StoreMerges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movekit",
				Subsystem: "store",
				Name:      "merges_total",
				Help:      "Total number of merge operations per entity type",
			},
			[]string{"entity_type"},
		),

		FlashMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "movekit",
				Subsystem: "state",
				Name:      "flash_messages_total",
				Help:      "Total number of flash messages emitted by type",
			},
			[]string{"type"},
		),
	}
}

// RecordRequest increments the request counter
func (c *Metrics) RecordRequest(resource, operation, status string) {
	c.RequestsTotal.WithLabelValues(resource, operation, status).Inc()
}

// RecordRequestDuration records request latency
func (c *Metrics) RecordRequestDuration(resource, operation string, duration time.Duration) {
	c.RequestDuration.WithLabelValues(resource, operation).Observe(duration.Seconds())
}

// RecordFlowRun increments the flow run counter
func (c *Metrics) RecordFlowRun(flow, status string) {
	c.FlowRuns.WithLabelValues(flow, status).Inc()
}

// RecordFlowDuration records how long a flow run took
func (c *Metrics) RecordFlowDuration(flow string, duration time.Duration) {
	c.FlowDuration.WithLabelValues(flow).Observe(duration.Seconds())
}

// RecordFlowFailure increments the flow failure counter
func (c *Metrics) RecordFlowFailure(flow, class string) {
	c.FlowFailures.WithLabelValues(flow, class).Inc()
}

// RecordEntityCount updates the per-type record gauge
func (c *Metrics) RecordEntityCount(entityType string, count int) {
	c.EntityCount.WithLabelValues(entityType).Set(float64(count))
}

// RecordStoreMerge increments the merge counter
func (c *Metrics) RecordStoreMerge(entityType string) {
	c.StoreMerges.WithLabelValues(entityType).Inc()
}

// RecordFlashMessage increments the flash message counter
func (c *Metrics) RecordFlashMessage(messageType string) {
	c.FlashMessages.WithLabelValues(messageType).Inc()
}
