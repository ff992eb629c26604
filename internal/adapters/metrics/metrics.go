// Package metrics collects store and payment counters in a private Prometheus registry.
//
// There is no listener; the registry is exported to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swimclub"

// Metrics holds the collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry           *prometheus.Registry
	storeOps           *prometheus.CounterVec
	storeSeconds       *prometheus.HistogramVec
	paymentsRegistered prometheus.Counter
	paymentAmount      prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Record store operations by store, operation and outcome.",
		}, []string{"store", "op", "outcome"}),
		storeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_seconds",
			Help:      "Record store operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"store", "op"}),
		paymentsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_registered_total",
			Help:      "Payments registered.",
		}),
		paymentAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of registered payment amounts.",
		}),
	}
	m.registry.MustRegister(m.storeOps, m.storeSeconds, m.paymentsRegistered, m.paymentAmount)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStore records one record store operation.
func (m *Metrics) ObserveStore(store, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.storeOps.WithLabelValues(store, op, outcome).Inc()
	m.storeSeconds.WithLabelValues(store, op).Observe(d.Seconds())
}

// PaymentRegistered records a registered payment.
func (m *Metrics) PaymentRegistered(amount float64) {
	if m == nil {
		return
	}
	m.paymentsRegistered.Inc()
	m.paymentAmount.Add(amount)
}

// WriteTextfile writes the registry to path in the text exposition format.
// PRE: path's directory exists
// POST: path is replaced atomically
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
