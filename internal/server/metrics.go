package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	reportsReceived *prometheus.CounterVec
	requests        *prometheus.CounterVec
	storeErrors     prometheus.Counter
	markersServed   prometheus.Histogram
	liveClients     prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		reportsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "damage_map_reports_received_total",
			Help: "Reports completed, by intake source.",
		}, []string{"source"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "damage_map_requests_total",
			Help: "Requests to the data and map endpoints.",
		}, []string{"endpoint"}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "damage_map_store_errors_total",
			Help: "Store operations that failed.",
		}),
		markersServed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "damage_map_markers_per_render",
			Help:    "Markers drawn per map render.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		liveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "damage_map_live_clients",
			Help: "Connected websocket clients.",
		}),
	}
	m.registry.MustRegister(m.reportsReceived, m.requests, m.storeErrors, m.markersServed, m.liveClients)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
