package transcript

import (
	"encoding/json"
	"errors"
	"fmt"

	"ayurwell-backend/internal/model"
)

// Version is the current layout of the persisted transcript.
const Version = 1

var (
	ErrVersionMismatch = errors.New("transcript: unsupported version")
	ErrEmptyTranscript = errors.New("transcript: no turns")
)

type envelope struct {
	Version int              `json:"version"`
	Turns   []model.ChatTurn `json:"turns"`
}

func Encode(turns []model.ChatTurn) ([]byte, error) {
	return json.Marshal(envelope{Version: Version, Turns: turns})
}

// Decode parses a stored transcript. Other versions are refused rather than
// migrated.
func Decode(data []byte) ([]model.ChatTurn, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("transcript: decode: %w", err)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersionMismatch, env.Version)
	}
	if len(env.Turns) == 0 {
		return nil, ErrEmptyTranscript
	}
	for i, turn := range env.Turns {
		if turn.ID == "" || (turn.Role != model.RoleUser && turn.Role != model.RoleAssistant) {
			return nil, fmt.Errorf("transcript: decode: turn %d is malformed", i)
		}
	}
	return env.Turns, nil
}
