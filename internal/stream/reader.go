package stream

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"ayurwell-backend/internal/model"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"
)

// readFrames decodes event-stream lines from r and passes every text
// fragment to onDelta in arrival order. It returns nil at the end marker or
// at end of body, and the read error otherwise. Frames that fail to decode
// are skipped.
func readFrames(r io.Reader, onDelta func(string)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		// a final line without a newline still counts
		if line != "" {
			if done := handleLine(line, onDelta); done {
				return nil
			}
		}
		if err != nil {
			return nil
		}
	}
}

func handleLine(line string, onDelta func(string)) bool {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, dataPrefix) {
		return false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneMarker {
		return true
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return false
	}
	if delta := model.StreamDelta(chunk); delta != "" {
		onDelta(delta)
	}
	return false
}
