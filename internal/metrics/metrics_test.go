package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range m.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			found++
		}
	}
	return found == len(labels)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAppointment("create", nil)
	m.ObserveAppointment("create", errors.New("x"))
	m.ObserveFinish("paid", 150)
	m.ObserveFinish("replayed", 0)
	m.ObserveBootstrap(true)
	m.ObserveHTTP("GET", "/api/me", 404, time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, reg, "studio_agenda_appointment_mutations_total", map[string]string{"op": "create", "result": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "studio_agenda_appointment_mutations_total", map[string]string{"op": "create", "result": "error"}))
	assert.Equal(t, 150.0, counterValue(t, reg, "studio_checkout_gross_amount_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "studio_sync_bootstrap_total", map[string]string{"source": "cache"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "studio_http_requests_total", map[string]string{"status": "4xx"}))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAppointment("create", nil)
	m.ObserveFinish("paid", 1)
	m.ObserveBootstrap(false)
	m.ObserveHTTP("GET", "/", 200, time.Second)
}
