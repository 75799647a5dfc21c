// Package stream sends a conversation to the chat proxy and decodes the
// event stream that comes back into text deltas.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/utils"
)

// Handler receives the events of one send: any number of deltas, then
// exactly one of OnDone or OnError. Nothing is delivered once the send's
// context is done.
type Handler interface {
	OnDelta(delta string)
	OnDone()
	OnError(err *Error)
}

// Funcs adapts plain functions to Handler. Nil fields are ignored.
type Funcs struct {
	Delta func(string)
	Done  func()
	Error func(*Error)
}

func (f Funcs) OnDelta(delta string) {
	if f.Delta != nil {
		f.Delta(delta)
	}
}

func (f Funcs) OnDone() {
	if f.Done != nil {
		f.Done()
	}
}

func (f Funcs) OnError(err *Error) {
	if f.Error != nil {
		f.Error(err)
	}
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient talks to the proxy at endpoint. headerTimeout bounds the wait for
// the response headers; the streamed body itself is only bounded by ctx.
func NewClient(endpoint string, headerTimeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: utils.NewStreamingHTTPClient(headerTimeout),
	}
}

// Send posts history with token as bearer credential and streams the reply
// into h. It blocks until the stream ends. The returned error is nil after
// OnDone, the *Error already passed to OnError, ctx.Err() when the send was
// abandoned, or ErrInvalidRequest.
func (c *Client) Send(ctx context.Context, history []model.ChatMessage, token string, h Handler) error {
	if len(history) == 0 || token == "" {
		return ErrInvalidRequest
	}

	body, err := json.Marshal(model.ChatRequest{Messages: history})
	if err != nil {
		return fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fail(h, newError(KindTransport, 0, "", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fail(h, statusError(resp))
	}

	readErr := readFrames(resp.Body, func(delta string) {
		if ctx.Err() == nil {
			h.OnDelta(delta)
		}
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if readErr != nil {
		return fail(h, newError(KindTransport, 0, "", readErr))
	}

	h.OnDone()
	return nil
}

func fail(h Handler, err *Error) error {
	h.OnError(err)
	return err
}

// statusError maps a non-2xx proxy answer. The proxy's {"error"} text is
// preferred over the built-in message.
func statusError(resp *http.Response) *Error {
	kind := KindUpstream
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		kind = KindRateLimit
	case http.StatusPaymentRequired:
		kind = KindQuota
	case http.StatusUnauthorized:
		kind = KindAuth
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload model.ErrorResponse
	message := ""
	if json.Unmarshal(data, &payload) == nil {
		message = payload.Error
	}

	return newError(kind, resp.StatusCode, message, fmt.Errorf("proxy returned %d", resp.StatusCode))
}
