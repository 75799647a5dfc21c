package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurwell-backend/internal/auth"
	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/mockgateway"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const validToken = "token-1"

func testConfig(gatewayURL string) *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{BaseURL: gatewayURL, APIKey: "key", Model: "m", HeaderTimeout: time.Second},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: config.DefaultAllowedHeaders,
		},
	}
}

// upstream counts calls and serves the mock gateway, or a fixed status when
// status is non-zero.
func upstream(t *testing.T, status int, calls *int32) *httptest.Server {
	t.Helper()
	engine := gin.New()
	mockgateway.NewHandler(0).Register(engine)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		r.URL.Path = "/v1" + r.URL.Path
		engine.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, status int, calls *int32) *gin.Engine {
	cfg := testConfig(upstream(t, status, calls).URL)
	provider := auth.NewStaticProvider(map[string]string{validToken: "user-1"})
	return SetupRouter(cfg, NewChatHandler(service.NewChatService(cfg)), provider)
}

func chatRequest(body, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://app.example.com")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestStreamChat_RelaysGatewayStream(t *testing.T) {
	var calls int32
	router := newTestRouter(t, 0, &calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, chatRequest(`{"messages":[{"role":"user","content":"Help me sleep better"}]}`, validToken))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), "chat.completion.chunk")
	assert.True(t, strings.HasSuffix(w.Body.String(), "data: [DONE]\n\n"))
	assert.EqualValues(t, 1, calls)
}

func TestStreamChat_NoUpstreamCallWithoutAuth(t *testing.T) {
	var calls int32
	router := newTestRouter(t, 0, &calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, chatRequest(`{"messages":[]}`, ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", errorMessage(t, w))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, chatRequest(`{"messages":[]}`, "forged"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid authentication", errorMessage(t, w))

	assert.EqualValues(t, 0, calls)
}

func TestStreamChat_UpstreamStatus(t *testing.T) {
	cases := map[int]struct {
		status  int
		message string
	}{
		http.StatusTooManyRequests:     {http.StatusTooManyRequests, service.MsgRateLimited},
		http.StatusPaymentRequired:     {http.StatusPaymentRequired, service.MsgQuota},
		http.StatusServiceUnavailable:  {http.StatusInternalServerError, service.MsgUpstream},
		http.StatusInternalServerError: {http.StatusInternalServerError, service.MsgUpstream},
	}

	for upstreamStatus, want := range cases {
		var calls int32
		router := newTestRouter(t, upstreamStatus, &calls)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, chatRequest(`{"messages":[{"role":"user","content":"hi"}]}`, validToken))

		assert.Equal(t, want.status, w.Code, "upstream %d", upstreamStatus)
		assert.Equal(t, want.message, errorMessage(t, w))
	}
}

func TestStreamChat_UndecodableBody(t *testing.T) {
	var calls int32
	router := newTestRouter(t, 0, &calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, chatRequest(`{"messages":`, validToken))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, errorMessage(t, w))
	assert.EqualValues(t, 0, calls)
}

func TestStreamChat_MissingGatewayKey(t *testing.T) {
	var calls int32
	cfg := testConfig(upstream(t, 0, &calls).URL)
	cfg.Gateway.APIKey = ""
	router := SetupRouter(cfg, NewChatHandler(service.NewChatService(cfg)), auth.NewStaticProvider(map[string]string{validToken: "u"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, chatRequest(`{"messages":[{"role":"user","content":"hi"}]}`, validToken))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "gateway api key is not configured", errorMessage(t, w))
	assert.EqualValues(t, 0, calls)
}

func TestPreflight(t *testing.T) {
	var calls int32
	router := newTestRouter(t, 0, &calls)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "authorization")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/chat", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealth(t *testing.T) {
	var calls int32
	router := newTestRouter(t, 0, &calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

type stubOpener struct {
	body io.ReadCloser
	err  error
}

func (s stubOpener) OpenStream(context.Context, []model.ChatMessage) (io.ReadCloser, error) {
	return s.body, s.err
}

type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "data: {}\n\n"), nil
	}
	return 0, errors.New("connection reset")
}

func (r *failingReader) Close() error { return nil }

func TestStreamChat_TruncatedUpstreamKeepsPartialBytes(t *testing.T) {
	h := NewChatHandler(stubOpener{body: &failingReader{}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = chatRequest(`{"messages":[]}`, validToken)

	h.StreamChat(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data: {}\n\n", w.Body.String())
}

func TestStreamChat_PlainErrorBecomesUnexpected(t *testing.T) {
	h := NewChatHandler(stubOpener{err: errors.New("boom")})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = chatRequest(`{"messages":[]}`, validToken)

	h.StreamChat(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "boom", errorMessage(t, w))
}
