package transcript

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurwell-backend/internal/model"
)

func TestEncodeLayout(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := Encode([]model.ChatTurn{{ID: "a", Role: model.RoleUser, Content: "hi", CreatedAt: ts}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, Version, raw["version"])
	turn := raw["turns"].([]any)[0].(map[string]any)
	assert.Equal(t, "2026-01-02T03:04:05Z", turn["timestamp"])
	assert.Equal(t, "user", turn["role"])
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"version":3,"turns":[]}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)

	_, err = Decode([]byte(`{"version":1}`))
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	_, err = Decode([]byte(`{`))
	assert.Error(t, err)
}
