package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevelAndFormat(t *testing.T) {
	require.NoError(t, Init("warn", "json"))
	var buf bytes.Buffer
	SetOutput(&buf)

	Info("hidden")
	WithFields(logrus.Fields{"path": "/chat"}).Warn("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "/chat", entry["path"])
	assert.Equal(t, "warning", entry["level"])
}

func TestInitUnknownLevel(t *testing.T) {
	require.NoError(t, Init("loud", "text"))
	assert.Equal(t, logrus.InfoLevel, std().GetLevel())
}
