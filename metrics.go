package main

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	qubits     prometheus.Histogram
	operations *prometheus.CounterVec
	issues     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qgridsim_requests_total",
			Help: "Evaluate requests by response status",
		}, []string{"status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qgridsim_evaluate_latency_seconds",
			Help:    "Latency of circuit evaluation",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		qubits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qgridsim_circuit_qubits",
			Help:    "Register size of evaluated circuits",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qgridsim_operations_total",
			Help: "Operations applied, by gate",
		}, []string{"gate"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qgridsim_issues_total",
			Help: "Operations reported and skipped, by reason",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.qubits,
		m.operations,
		m.issues,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvaluate records one finished evaluate request.
func (m *Metrics) ObserveEvaluate(d time.Duration, status string) {
	m.requests.WithLabelValues(status).Inc()
	m.latency.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveCircuit records the size and operations of a simulated circuit.
func (m *Metrics) ObserveCircuit(c *Circuit, issues []Issue) {
	m.qubits.Observe(float64(c.NumQubits))
	ops, _ := c.Ops()
	for _, op := range ops {
		m.operations.WithLabelValues(op.Kind.String()).Inc()
	}
	for _, issue := range issues {
		m.issues.WithLabelValues(issueReason(issue.Err)).Inc()
	}
}

func issueReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownGate):
		return "unknown_gate"
	case errors.Is(err, ErrUnmatchedGroup):
		return "unmatched_group"
	case errors.Is(err, ErrQubitOutOfRange):
		return "out_of_range"
	}
	return "other"
}
