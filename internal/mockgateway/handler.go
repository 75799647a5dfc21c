// Package mockgateway serves an OpenAI-compatible completion endpoint that
// answers with canned Ayurvedic guidance. It stands in for the real gateway
// during local development and in tests.
package mockgateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/utils"
	"ayurwell-backend/pkg/logger"
)

const wordsPerChunk = 3

type Handler struct {
	chunkDelay time.Duration
}

func NewHandler(chunkDelay time.Duration) *Handler {
	return &Handler{chunkDelay: chunkDelay}
}

// Register mounts POST <group>/v1/chat/completions.
func (h *Handler) Register(group gin.IRoutes) {
	group.POST("/v1/chat/completions", h.Completions)
}

func (h *Handler) Completions(c *gin.Context) {
	if !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "missing api key"})
		return
	}

	var req openai.ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	answer := Compose(lastUserMessage(model.FromOpenAIMessages(req.Messages)))
	id := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()

	if !req.Stream {
		c.JSON(http.StatusOK, openai.ChatCompletionResponse{
			ID:      id,
			Object:  "chat.completion",
			Created: created,
			Model:   req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
				FinishReason: openai.FinishReasonStop,
			}},
		})
		return
	}

	sse := utils.NewSSEWriter(c.Writer)
	c.Status(http.StatusOK)
	// hosted gateways open with a processing comment; clients must skip it
	if err := sse.Comment("PROCESSING"); err != nil {
		return
	}

	ctx := c.Request.Context()
	chunks := Chunk(answer, wordsPerChunk)
	for i, text := range chunks {
		delta := openai.ChatCompletionStreamChoiceDelta{Content: text}
		if i == 0 {
			delta.Role = openai.ChatMessageRoleAssistant
		}
		if err := h.writeChunk(sse, id, created, req.Model, delta, ""); err != nil {
			logger.Debugf("mock gateway client went away: %v", err)
			return
		}

		if h.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(h.chunkDelay):
			}
		}
	}

	if err := h.writeChunk(sse, id, created, req.Model, openai.ChatCompletionStreamChoiceDelta{}, openai.FinishReasonStop); err != nil {
		return
	}
	sse.Close()
}

func (h *Handler) writeChunk(sse *utils.SSEWriter, id string, created int64, modelName string, delta openai.ChatCompletionStreamChoiceDelta, finish openai.FinishReason) error {
	data, err := json.Marshal(openai.ChatCompletionStreamResponse{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   modelName,
		Choices: []openai.ChatCompletionStreamChoice{{
			Index:        0,
			Delta:        delta,
			FinishReason: finish,
		}},
	})
	if err != nil {
		return err
	}
	return sse.Write("", string(data))
}

func lastUserMessage(messages []model.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
