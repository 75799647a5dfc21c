// Package metrics exposes prometheus collectors for the chat proxy.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// proxyRequests counts finished POST /chat requests.
	// Labels: outcome (streamed, interrupted, unauthenticated, rate_limited, quota, upstream_error, error)
	proxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ayurwell",
		Subsystem: "proxy",
		Name:      "requests_total",
		Help:      "Chat proxy requests by outcome",
	}, []string{"outcome"})

	// upstreamResponses counts gateway answers by HTTP status code.
	upstreamResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ayurwell",
		Subsystem: "gateway",
		Name:      "responses_total",
		Help:      "Upstream gateway responses by status code",
	}, []string{"code"})

	upstreamHeaderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ayurwell",
		Subsystem: "gateway",
		Name:      "header_latency_seconds",
		Help:      "Time until the gateway returned response headers",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	relayedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ayurwell",
		Subsystem: "proxy",
		Name:      "relayed_bytes_total",
		Help:      "Event-stream bytes relayed from the gateway to clients",
	})
)

func ObserveRequest(outcome string) {
	proxyRequests.WithLabelValues(outcome).Inc()
}

func ObserveUpstream(statusCode int, headerSeconds float64) {
	upstreamResponses.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	upstreamHeaderLatency.Observe(headerSeconds)
}

func AddRelayedBytes(n int) {
	relayedBytes.Add(float64(n))
}
