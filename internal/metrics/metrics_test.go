package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(proxyRequests.WithLabelValues("streamed"))
	ObserveRequest("streamed")
	assert.Equal(t, before+1, testutil.ToFloat64(proxyRequests.WithLabelValues("streamed")))
}

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamResponses.WithLabelValues("429"))
	ObserveUpstream(429, 0.2)
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamResponses.WithLabelValues("429")))
}

func TestAddRelayedBytes(t *testing.T) {
	before := testutil.ToFloat64(relayedBytes)
	AddRelayedBytes(128)
	assert.Equal(t, before+128, testutil.ToFloat64(relayedBytes))
}
