package runtime

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus gauges/histograms/counters for a running
// engine. Trimmed from the teacher's PrometheusMetrics: this runtime has no
// retry or backpressure machinery, so those series are dropped; the rest
// (inflight nodes, queue depth, per-step latency) carry over directly since
// the batch dispatcher has the same shape as the teacher's worker pool.
type Metrics struct {
	inflightNodes prometheus.Gauge
	queueDepth    prometheus.Gauge
	stepLatency   *prometheus.HistogramVec
	limitHits     *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewMetrics registers the runtime's series with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		inflightNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentgraph",
			Name:      "inflight_nodes",
			Help:      "Number of nodes currently executing in the active batch.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentgraph",
			Name:      "frontier_depth",
			Help:      "Number of node ids queued for the next batch.",
		}),
		stepLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentgraph",
			Name:      "step_latency_ms",
			Help:      "Node step execution duration in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"node_id", "status"}),
		limitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentgraph",
			Name:      "limit_exceeded_total",
			Help:      "Runs terminated by a configured limit, by limit kind.",
		}, []string{"limit"}),
		enabled: true,
	}

	registry.MustRegister(m.inflightNodes, m.queueDepth, m.stepLatency, m.limitHits)
	return m
}

func (m *Metrics) UpdateInflightNodes(n int) {
	if m == nil || !m.isEnabled() {
		return
	}
	m.inflightNodes.Set(float64(n))
}

func (m *Metrics) UpdateQueueDepth(n int) {
	if m == nil || !m.isEnabled() {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) RecordStepLatency(nodeID string, latency time.Duration, status string) {
	if m == nil || !m.isEnabled() {
		return
	}
	m.stepLatency.WithLabelValues(nodeID, status).Observe(float64(latency.Milliseconds()))
}

func (m *Metrics) IncrementLimitExceeded(limit string) {
	if m == nil || !m.isEnabled() {
		return
	}
	m.limitHits.WithLabelValues(limit).Inc()
}

func (m *Metrics) isEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *Metrics) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

func (m *Metrics) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}
