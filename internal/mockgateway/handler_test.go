package mockgateway

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(0).Register(router)
	return router
}

func post(t *testing.T, router http.Handler, body any, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set("Authorization", "Bearer test")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestComposeIsDeterministicAndComplete(t *testing.T) {
	a := Compose("Help me sleep better")
	b := Compose("Help me sleep better")
	assert.Equal(t, a, b)

	for _, header := range []string{
		"🌿 **Dosha Insight**",
		"🌅 **Daily Routine (Dinacharya)**",
		"🍵 **Diet Guidance**",
		"🌱 **Herbal Information**",
		"🧘 **Mind & Stress Management**",
	} {
		assert.Contains(t, a, header)
	}
	assert.Contains(t, a, "improve your sleep quality")
	assert.Contains(t, a, "Jatamansi")
}

func TestComposePicksSectionsByKeyword(t *testing.T) {
	assert.Contains(t, Compose("I feel so much stress"), "Ashwagandha")
	assert.Contains(t, Compose("my stomach is bloated"), "CCF tea")
	assert.Contains(t, Compose("I run hot and get angry"), "Pitta imbalance")
	assert.Contains(t, Compose("hello"), "Kapha imbalance")
}

func TestChunkReassembles(t *testing.T) {
	text := "one two three four five\n\nsix  seven"
	chunks := Chunk(text, 2)

	assert.Equal(t, text, strings.Join(chunks, ""))
	assert.Len(t, chunks, 4)
	assert.Equal(t, []string{"x"}, Chunk("x", 0))
}

func TestCompletionsStream(t *testing.T) {
	w := post(t, newRouter(), openai.ChatCompletionRequest{
		Model:    "m",
		Stream:   true,
		Messages: []openai.ChatCompletionMessage{{Role: "system", Content: "p"}, {Role: "user", Content: "Help me sleep better"}},
	}, true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var text strings.Builder
	var sawDone bool
	scanner := bufio.NewScanner(w.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			sawDone = true
			continue
		}
		var chunk openai.ChatCompletionStreamResponse
		require.NoError(t, json.Unmarshal([]byte(payload), &chunk))
		assert.Equal(t, "chat.completion.chunk", chunk.Object)
		text.WriteString(chunk.Choices[0].Delta.Content)
	}

	assert.True(t, sawDone)
	assert.Equal(t, Compose("Help me sleep better"), text.String())
}

func TestCompletionsNonStream(t *testing.T) {
	w := post(t, newRouter(), openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{{Role: "user", Content: "stress"}},
	}, true)

	require.Equal(t, http.StatusOK, w.Code)
	var resp openai.ChatCompletionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, Compose("stress"), resp.Choices[0].Message.Content)
}

func TestCompletionsRequiresKey(t *testing.T) {
	w := post(t, newRouter(), openai.ChatCompletionRequest{}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
