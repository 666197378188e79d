// Package metrics exposes the prometheus instruments of the studio API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os contadores da API. Um *Metrics nil ignora tudo.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	appointmentOps *prometheus.CounterVec
	checkoutFinish *prometheus.CounterVec
	checkoutGross  prometheus.Counter
	bootstrapTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studio",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		appointmentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "agenda",
			Name:      "appointment_mutations_total",
			Help:      "Appointment writes by operation and result",
		}, []string{"op", "result"}),
		checkoutFinish: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "checkout",
			Name:      "finish_total",
			Help:      "Command finish attempts by result",
		}, []string{"result"}),
		checkoutGross: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "checkout",
			Name:      "gross_amount_total",
			Help:      "Gross amount received through finished commands",
		}),
		bootstrapTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "sync",
			Name:      "bootstrap_total",
			Help:      "Bootstrap requests served from cache or database",
		}, []string{"source"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.appointmentOps,
		m.checkoutFinish,
		m.checkoutGross,
		m.bootstrapTotal,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAppointment(op string, err error) {
	if m == nil {
		return
	}
	m.appointmentOps.WithLabelValues(op, result(err)).Inc()
}

// ObserveFinish registra o fechamento; gross só conta quando houve pagamento novo.
func (m *Metrics) ObserveFinish(result string, gross float64) {
	if m == nil {
		return
	}
	m.checkoutFinish.WithLabelValues(result).Inc()
	if gross > 0 {
		m.checkoutGross.Add(gross)
	}
}

func (m *Metrics) ObserveBootstrap(fromCache bool) {
	if m == nil {
		return
	}
	source := "database"
	if fromCache {
		source = "cache"
	}
	m.bootstrapTotal.WithLabelValues(source).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}
