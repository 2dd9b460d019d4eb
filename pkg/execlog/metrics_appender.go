package execlog

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsAppender exports entries as Prometheus metrics:
//
//	dataaccess_operations_total{database,operation,status}
//	dataaccess_operation_duration_seconds{database,operation}
//	dataaccess_rows_affected_total{database,operation}
type MetricsAppender struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rows       *prometheus.CounterVec
	registerer prometheus.Registerer
}

// NewMetricsAppender registers the collectors with reg (DefaultRegisterer when nil).
func NewMetricsAppender(reg prometheus.Registerer) (*MetricsAppender, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ma := &MetricsAppender{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataaccess",
			Name:      "operations_total",
			Help:      "Number of executed data access operations.",
		}, []string{"database", "operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dataaccess",
			Name:      "operation_duration_seconds",
			Help:      "Duration of data access operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataaccess",
			Name:      "rows_affected_total",
			Help:      "Sum of numeric outcome counts reported by operations.",
		}, []string{"database", "operation"}),
		registerer: reg,
	}

	for _, c := range ma.collectors() {
		if err := reg.Register(c); err != nil {
			ma.unregister()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return ma, nil
}

func (ma *MetricsAppender) collectors() []prometheus.Collector {
	return []prometheus.Collector{ma.operations, ma.duration, ma.rows}
}

func (ma *MetricsAppender) unregister() {
	for _, c := range ma.collectors() {
		ma.registerer.Unregister(c)
	}
}

// Append updates the collectors from entry.
func (ma *MetricsAppender) Append(_ context.Context, entry *Entry) error {
	op := string(entry.Operation)
	ma.operations.WithLabelValues(entry.Database, op, string(entry.Status)).Inc()
	ma.duration.WithLabelValues(entry.Database, op).Observe(entry.Duration.Seconds())

	if n, ok := entry.CountInt(); ok && n > 0 {
		ma.rows.WithLabelValues(entry.Database, op).Add(float64(n))
	}
	return nil
}

// Close unregisters the collectors.
func (ma *MetricsAppender) Close() error {
	ma.unregister()
	return nil
}
