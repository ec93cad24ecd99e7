// Package metrics holds the Prometheus collectors for the local store. All
// methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homeclean"

type Metrics struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	transactions *prometheus.HistogramVec
}

// New registers the store collectors and the Go runtime collectors on a
// private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by collection, operation and outcome.",
		}, []string{"collection", "op", "outcome"}),
		transactions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "transaction_duration_seconds",
			Help:      "Duration of store transactions by mode and outcome.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"mode", "outcome"}),
	}
	m.registry.MustRegister(
		m.operations,
		m.transactions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveOperation(collection, op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(collection, op, outcome(err)).Inc()
}

func (m *Metrics) ObserveTransaction(mode string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(mode, outcome(err)).Observe(time.Since(start).Seconds())
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
