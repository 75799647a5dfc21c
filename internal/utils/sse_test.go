package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewSSEWriter(rec)

	require.NoError(t, w.Write("", `{"a":1}`))
	require.NoError(t, w.Comment("keep-alive"))
	require.NoError(t, w.Write("status", "ok"))
	require.NoError(t, w.Close())

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: {\"a\":1}\n\n: keep-alive\n\nevent: status\ndata: ok\n\ndata: [DONE]\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestNewStreamingHTTPClientHasNoOverallTimeout(t *testing.T) {
	client := NewStreamingHTTPClient(0)
	assert.Zero(t, client.Timeout)
}
