// Package metrics exposes the gateway's Prometheus collectors and the HTTP
// server that serves them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels successful requests.
const OutcomeOK = "ok"

// Metrics holds the gateway collectors. A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamDuration *prometheus.HistogramVec
	ChainUp          prometheus.Gauge
	ChainBlockNumber prometheus.Gauge
}

// NewMetrics creates the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "CCIP-Read requests by resolver function and outcome",
			},
			[]string{"function", "outcome"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "End-to-end CCIP-Read request processing time",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),

		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "call_duration_seconds",
				Help:      "Registry eth_call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"function"},
		),

		ChainUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "chain",
				Name:      "up",
				Help:      "Whether the last chain health probe succeeded (1) or failed (0)",
			},
		),

		ChainBlockNumber: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "chain",
				Name:      "block_number",
				Help:      "Latest block number seen by the chain health probe",
			},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.UpstreamDuration,
		m.ChainUp,
		m.ChainBlockNumber,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(function string, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(function, outcome).Inc()
	m.RequestDuration.WithLabelValues(outcome).Observe(took.Seconds())
}

// ObserveUpstream records the latency of a registry call.
func (m *Metrics) ObserveUpstream(function string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(function).Observe(took.Seconds())
}

// SetChainStatus records the result of a chain health probe.
func (m *Metrics) SetChainStatus(up bool, blockNumber uint64) {
	if m == nil {
		return
	}
	if !up {
		m.ChainUp.Set(0)
		return
	}
	m.ChainUp.Set(1)
	m.ChainBlockNumber.Set(float64(blockNumber))
}

// MetricsServer serves the collectors of a dedicated registry on /metrics.
type MetricsServer struct {
	Metrics  *Metrics
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates the collectors under namespace and a server for them on addr.
func New(namespace string, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	m := NewMetrics(namespace)
	if err := m.Register(registry); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		Metrics:  m,
		registry: registry,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler returns the /metrics handler.
func (s *MetricsServer) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe blocks serving metrics until Shutdown.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
