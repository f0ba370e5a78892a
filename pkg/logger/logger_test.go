package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(buf *bytes.Buffer) map[string]interface{} {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))

	var entry map[string]interface{}
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		return nil
	}
	return entry
}

func TestNewWriter_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.Info("hello")

	entry := lastLine(&buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{
		"module": "engine",
		"rows":   12,
	}).Info("transformed")

	entry := lastLine(&buf)
	require.NotNil(t, entry)
	assert.Equal(t, "engine", entry["module"])
	assert.Equal(t, float64(12), entry["rows"])
}

func TestWithField_DoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")

	child := log.WithField("module", "scorer")
	child.Info("scored")
	log.Info("plain")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var parent map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &parent))
	assert.NotContains(t, parent, "module")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")

	log.Debug("noise")
	log.Info("noise")
	log.Warn("important")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	entry := lastLine(&buf)
	require.NotNil(t, entry)
	assert.Equal(t, "important", entry["message"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, parseLogLevel("unknown"))
}
