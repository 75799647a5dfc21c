package model

import (
	openai "github.com/sashabaranov/go-openai"
)

// ToOpenAIMessages converts history into the gateway wire format. Unknown
// roles pass through untouched; the gateway decides whether they are valid.
func ToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}

// FromOpenAIMessages is the inverse of ToOpenAIMessages, used by the mock
// gateway to read incoming requests.
func FromOpenAIMessages(messages []openai.ChatCompletionMessage) []ChatMessage {
	result := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, ChatMessage{
			Role:    Role(msg.Role),
			Content: msg.Content,
		})
	}
	return result
}

// StreamDelta extracts the text fragment from one streamed completion chunk.
func StreamDelta(chunk openai.ChatCompletionStreamResponse) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}
