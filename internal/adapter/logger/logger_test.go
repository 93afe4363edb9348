package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Service   string                 `json:"service"`
	RequestID string                 `json:"request_id"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details"`
	Error     *ErrorInfo             `json:"error"`
}

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", "debug", &buf)

	lgr.Error("publish_failed", "Failed to publish", "req-1", map[string]interface{}{"order_id": "o-1"}, errors.New("boom"))

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "api", entry.Service)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "publish_failed", entry.Action)
	assert.Equal(t, "Failed to publish", entry.Message)
	assert.Equal(t, "o-1", entry.Details["order_id"])
	require.NotNil(t, entry.Error)
	assert.Equal(t, "boom", entry.Error.Msg)
	assert.NotEmpty(t, entry.Timestamp)
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter("api", "info", &buf)

	lgr.Debug("noise", "hidden", "", nil)
	lgr.Info("startup", "visible", "", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "visible")
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}
