// Package gateway opens streaming completions against the upstream
// OpenAI-compatible gateway. The response body is handed back untouched.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/utils"
)

var ErrMissingAPIKey = errors.New("gateway api key is not configured")

// StatusError is a non-2xx answer from the gateway. Body holds at most the
// first few KiB and is meant for server-side logs only.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: utils.NewStreamingHTTPClient(cfg.HeaderTimeout),
	}
}

// Model is the fixed model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// BuildRequest prepends the system prompt to history and asks for a stream.
func (c *Client) BuildRequest(systemPrompt string, history []model.ChatMessage) openai.ChatCompletionRequest {
	messages := make([]model.ChatMessage, 0, len(history)+1)
	messages = append(messages, model.ChatMessage{Role: model.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)

	return openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: model.ToOpenAIMessages(messages),
		Stream:   true,
	}
}

// Stream posts req and returns the live response once headers arrive. On a
// 2xx status the caller owns resp.Body; any other status is drained, closed
// and reported as *StatusError.
func (c *Client) Stream(ctx context.Context, req openai.ChatCompletionRequest) (*http.Response, time.Duration, error) {
	if c.apiKey == "" {
		return nil, 0, ErrMissingAPIKey
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("encode gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, fmt.Errorf("gateway request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, elapsed, &StatusError{StatusCode: resp.StatusCode, Body: string(text)}
	}

	return resp, elapsed, nil
}
