package service

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/gateway"
	"ayurwell-backend/internal/metrics"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/prompt"
	"ayurwell-backend/pkg/logger"
)

const (
	MsgRateLimited  = "Rate limit exceeded. Please wait a moment and try again. 🙏"
	MsgQuota        = "Service temporarily unavailable. Please try again later. 🙏"
	MsgUpstream     = "Unable to connect to wellness advisor. Please try again."
	MsgUnknown      = "Unknown error occurred"
	MsgAuthRequired = "Authentication required"
	MsgAuthInvalid  = "Invalid authentication"
)

// Failure is an error already translated for the client: an HTTP status and
// a message safe to show to the user.
type Failure struct {
	Status  int
	Message string
	Outcome string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type ChatService struct {
	gateway      *gateway.Client
	systemPrompt string
}

func NewChatService(cfg *config.Config) *ChatService {
	return &ChatService{
		gateway:      gateway.NewClient(cfg.Gateway),
		systemPrompt: prompt.Or(cfg.Prompt.SystemPrompt),
	}
}

// OpenStream forwards history to the gateway behind the system prompt and
// returns the event-stream body on success. Every failure comes back as a
// *Failure.
func (s *ChatService) OpenStream(ctx context.Context, history []model.ChatMessage) (io.ReadCloser, error) {
	req := s.gateway.BuildRequest(s.systemPrompt, history)

	resp, elapsed, err := s.gateway.Stream(ctx, req)
	if err != nil {
		return nil, s.classify(err, elapsed.Seconds())
	}

	metrics.ObserveUpstream(resp.StatusCode, elapsed.Seconds())
	logger.WithFields(logrus.Fields{
		"model":    s.gateway.Model(),
		"messages": len(history),
		"latency":  elapsed.String(),
	}).Debug("gateway stream opened")

	return resp.Body, nil
}

func (s *ChatService) classify(err error, elapsed float64) *Failure {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		metrics.ObserveUpstream(statusErr.StatusCode, elapsed)

		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return &Failure{Status: http.StatusTooManyRequests, Message: MsgRateLimited, Outcome: "rate_limited", Err: err}
		case http.StatusPaymentRequired:
			return &Failure{Status: http.StatusPaymentRequired, Message: MsgQuota, Outcome: "quota", Err: err}
		default:
			logger.Errorf("AI gateway error: %d %s", statusErr.StatusCode, statusErr.Body)
			return &Failure{Status: http.StatusInternalServerError, Message: MsgUpstream, Outcome: "upstream_error", Err: err}
		}
	}

	logger.Errorf("Ayurveda chat error: %v", err)
	return Unexpected(err)
}

// Unexpected turns an error raised before any response was written into a
// 500 carrying its message.
func Unexpected(err error) *Failure {
	msg := MsgUnknown
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Failure{Status: http.StatusInternalServerError, Message: msg, Outcome: "error", Err: err}
}
