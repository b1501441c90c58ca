package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "WARN", "text")

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "bogus", "text")

	log.Debug("debug message")
	log.Info("info message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.Contains(t, out, "info message")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "INFO", "json")

	log.Info("hello", "component", "resolver")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "resolver", entry["component"])
}

func TestWithBindsAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "INFO", "text").With("component", "gate")

	log.Info("checked")

	assert.Contains(t, buf.String(), "component=gate")
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attachfs.log")

	log, err := New(Config{Level: "INFO", Format: "text", Output: path})
	require.NoError(t, err)

	log.Info("persisted line")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted line")
}

func TestNopDiscardsEverything(t *testing.T) {
	log := Nop()

	// Must not panic or write anywhere.
	log.Debug("a")
	log.Info("b")
	log.Warn("c")
	log.Error("d")
}
