// Package metrics colectores Prometheus del puente: ciclo de vida de recibos, peticiones HTTP y tareas.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/itsystem/posapi-bridge/internal/application/billing"
)

var _ billing.BillObserver = (*Metrics)(nil)

// Metrics colectores registrados en un Registerer propio (sin registro global).
type Metrics struct {
	billsSubmitted *prometheus.CounterVec
	submitLatency  *prometheus.HistogramVec
	billsRejected  *prometheus.CounterVec
	billsCancelled *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	taskRuns       *prometheus.CounterVec
}

// New crea y registra los colectores en reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		billsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_submitted_total",
			Help:      "Documents transmitted to the POS API by type and outcome.",
		}, []string{"type", "outcome"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bill_submit_duration_seconds",
			Help:      "Round-trip latency of POS API receipt submissions.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		billsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_rejected_total",
			Help:      "Bills rejected before transmission by reason.",
		}, []string{"reason"}),
		billsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_cancelled_total",
			Help:      "Receipt cancellations by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		taskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Background task executions by task and outcome.",
		}, []string{"task", "outcome"}),
	}
	reg.MustRegister(
		m.billsSubmitted, m.submitLatency, m.billsRejected, m.billsCancelled,
		m.httpRequests, m.httpLatency, m.taskRuns,
	)
	return m
}

func (m *Metrics) BillSubmitted(docType, outcome string, elapsed time.Duration) {
	m.billsSubmitted.WithLabelValues(docType, outcome).Inc()
	m.submitLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) BillRejected(reason string) {
	m.billsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) BillCancelled(outcome string) {
	m.billsCancelled.WithLabelValues(outcome).Inc()
}

// ObserveHTTP registra una petición HTTP; route es el patrón de la ruta, no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TaskRun registra la ejecución de una tarea del worker.
func (m *Metrics) TaskRun(task, outcome string) {
	m.taskRuns.WithLabelValues(task, outcome).Inc()
}
