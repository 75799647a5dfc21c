package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ayurwell-backend/internal/metrics"
	"ayurwell-backend/internal/middleware"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/service"
	"ayurwell-backend/internal/utils"
	"ayurwell-backend/pkg/logger"
)

const relayBufferSize = 4 << 10

// StreamOpener opens the upstream event stream for a conversation.
type StreamOpener interface {
	OpenStream(ctx context.Context, history []model.ChatMessage) (io.ReadCloser, error)
}

type ChatHandler struct {
	chatService StreamOpener
}

func NewChatHandler(chatService StreamOpener) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// StreamChat relays the gateway's event stream to the caller byte for byte.
// The body is decoded but not validated; a history the gateway dislikes
// comes back as an upstream failure.
func (h *ChatHandler) StreamChat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, service.Unexpected(err))
		return
	}

	body, err := h.chatService.OpenStream(c.Request.Context(), req.Messages)
	if err != nil {
		var failure *service.Failure
		if !errors.As(err, &failure) {
			failure = service.Unexpected(err)
		}
		h.fail(c, failure)
		return
	}
	defer body.Close()

	sse := utils.NewSSEWriter(c.Writer)
	c.Status(http.StatusOK)
	sse.Flush()

	start := time.Now()
	n, err := relay(c.Writer, sse, body)
	metrics.AddRelayedBytes(int(n))

	fields := logrus.Fields{"bytes": n, "duration": time.Since(start).String()}
	if claims := middleware.GetClaims(c); claims != nil {
		fields["sub"] = claims.Subject
	}
	if err != nil {
		// Headers are already out; the client sees a truncated stream.
		fields["error"] = err.Error()
		logger.WithFields(fields).Warn("chat stream interrupted")
		metrics.ObserveRequest("interrupted")
		return
	}
	logger.WithFields(fields).Debug("chat stream finished")
	metrics.ObserveRequest("streamed")
}

// Preflight answers browser CORS preflight requests. The CORS middleware has
// already set the headers.
func (h *ChatHandler) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	})
}

func (h *ChatHandler) fail(c *gin.Context, failure *service.Failure) {
	metrics.ObserveRequest(failure.Outcome)
	c.JSON(failure.Status, model.ErrorResponse{Error: failure.Message})
}

// relay copies src to w, flushing after every read so each upstream frame
// reaches the client as soon as it arrives.
func relay(w io.Writer, flusher *utils.SSEWriter, src io.Reader) (int64, error) {
	buf := make([]byte, relayBufferSize)
	var total int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, err := w.Write(buf[:n])
			total += int64(written)
			if err != nil {
				return total, err
			}
			flusher.Flush()
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}
