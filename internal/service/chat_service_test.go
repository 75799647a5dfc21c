package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/mockgateway"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/prompt"
)

func newService(baseURL, apiKey string) *ChatService {
	return NewChatService(&config.Config{
		Gateway: config.GatewayConfig{
			BaseURL:       baseURL,
			APIKey:        apiKey,
			Model:         "test-model",
			HeaderTimeout: time.Second,
		},
	})
}

func statusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"message":"upstream detail"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

var history = []model.ChatMessage{{Role: model.RoleUser, Content: "Help me sleep better"}}

func TestOpenStreamSendsPromptAndHistory(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	body, err := newService(srv.URL, "key").OpenStream(context.Background(), history)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data: [DONE]\n\n", string(data))

	assert.Equal(t, "test-model", got.Model)
	assert.True(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, prompt.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "Help me sleep better", got.Messages[1].Content)
}

func TestOpenStreamAgainstMockGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	mockgateway.NewHandler(0).Register(router)
	srv := httptest.NewServer(router)
	defer srv.Close()

	body, err := newService(srv.URL+"/v1", "key").OpenStream(context.Background(), history)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "data: [DONE]")
}

func TestOpenStreamClassifiesUpstreamStatus(t *testing.T) {
	cases := []struct {
		upstream int
		status   int
		message  string
		outcome  string
	}{
		{http.StatusTooManyRequests, http.StatusTooManyRequests, MsgRateLimited, "rate_limited"},
		{http.StatusPaymentRequired, http.StatusPaymentRequired, MsgQuota, "quota"},
		{http.StatusInternalServerError, http.StatusInternalServerError, MsgUpstream, "upstream_error"},
		{http.StatusBadRequest, http.StatusInternalServerError, MsgUpstream, "upstream_error"},
	}

	for _, tc := range cases {
		srv := statusServer(t, tc.upstream)

		_, err := newService(srv.URL, "key").OpenStream(context.Background(), history)

		var failure *Failure
		require.ErrorAs(t, err, &failure, "upstream %d", tc.upstream)
		assert.Equal(t, tc.status, failure.Status)
		assert.Equal(t, tc.message, failure.Message)
		assert.Equal(t, tc.outcome, failure.Outcome)
		assert.NotContains(t, failure.Message, "upstream detail")
	}
}

func TestOpenStreamWithoutKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newService(srv.URL, "").OpenStream(context.Background(), history)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusInternalServerError, failure.Status)
	assert.Equal(t, "gateway api key is not configured", failure.Message)
	assert.False(t, called)
}

func TestOpenStreamTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newService(url, "key").OpenStream(context.Background(), history)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusInternalServerError, failure.Status)
	assert.NotEmpty(t, failure.Message)
}

func TestUnexpected(t *testing.T) {
	assert.Equal(t, MsgUnknown, Unexpected(nil).Message)
	assert.Equal(t, http.StatusInternalServerError, Unexpected(io.ErrUnexpectedEOF).Status)
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), Unexpected(io.ErrUnexpectedEOF).Message)
}
