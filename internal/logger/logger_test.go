package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_Production(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "production", ""))

	log.Debug("hidden")
	log.Info("book created", "book_id", "b1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "book created", record["msg"])
	assert.Equal(t, "b1", record["book_id"])
}

func TestNewHandler_Development(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "development", ""))

	log.Debug("staged upload", "path", "/tmp/x")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=/tmp/x")
}
