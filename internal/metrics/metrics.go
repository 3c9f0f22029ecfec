// Package metrics expone contadores Prometheus del flujo de autenticacion.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del servicio sobre un registry propio.
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	otpDispatch *prometheus.CounterVec
}

// New crea y registra los contadores; tambien incluye los collectors de proceso y runtime.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notes_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		otpDispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notes_auth_otp_dispatch_total",
				Help: "Total number of OTP emails by delivery outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.operations, m.otpDispatch)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// ObserveOperation cuenta una operacion con su resultado ("ok" o la clase de error).
func (m *Metrics) ObserveOperation(operation, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveOtpDispatch cuenta un envio de OTP: sent, failed o timeout.
func (m *Metrics) ObserveOtpDispatch(outcome string) {
	m.otpDispatch.WithLabelValues(outcome).Inc()
}

// Handler sirve el registry en formato de exposicion Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
