package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsRegistry struct {
	registry     *prometheus.Registry
	flowsTotal   *prometheus.CounterVec
	flowDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
}

func newMetricsRegistry() *metricsRegistry {
	flows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "w3wrap_flows_total",
		Help: "Wrapper flows by operation and outcome",
	}, []string{"operation", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "w3wrap_flow_duration_seconds",
		Help:    "Wall time of wrapper flows including confirmation waits",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "w3wrap_flows_in_flight",
		Help: "Flows currently running",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(flows, duration, inFlight)

	return &metricsRegistry{
		registry:     r,
		flowsTotal:   flows,
		flowDuration: duration,
		inFlight:     inFlight,
	}
}

func (m *metricsRegistry) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// track marks a flow as started and returns a func recording its outcome.
func (m *metricsRegistry) track(op string) func(status string) {
	start := time.Now()
	m.inFlight.Inc()
	return func(status string) {
		m.inFlight.Dec()
		m.flowsTotal.WithLabelValues(op, status).Inc()
		m.flowDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
