package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// toolCalls counts tool invocations.
	// Labels: tool, status (ok, error)
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gomx",
		Subsystem: "tool",
		Name:      "calls_total",
		Help:      "Total tool calls handled",
	}, []string{"tool", "status"})

	toolLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gomx",
		Subsystem: "tool",
		Name:      "latency_seconds",
		Help:      "Tool call latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"tool"})

	// badRequests counts request bodies that could not be decoded.
	badRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gomx",
		Subsystem: "http",
		Name:      "bad_requests_total",
		Help:      "Total tool requests rejected before dispatch",
	})
)
