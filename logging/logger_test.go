package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Logger = (*MeshLogger)(nil)
	_ Logger = (*SlogAdapter)(nil)
	_ Logger = NoOpLogger{}
)

func TestMeshLoggerKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf, Component: "bridge"})

	logger.Info("bridge.issue.created", "ticket_id", "INC-1", "issue_key", "PROJ-7")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "bridge.issue.created", entry["msg"])
	assert.Equal(t, "bridge", entry["component"])
	assert.Equal(t, "INC-1", entry["ticket_id"])
	assert.Equal(t, "PROJ-7", entry["issue_key"])
}

func TestMeshLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelWarn, Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestMeshLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	derived := base.WithTicket("INC-9").WithComponent("sync")
	derived.Info("attempt")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INC-9", entry["ticket_id"])
	assert.Equal(t, "sync", entry["component"])

	// The parent logger is unchanged.
	buf.Reset()
	base.Info("plain")
	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasTicket := entry["ticket_id"]
	assert.False(t, hasTicket)
}

func TestMeshLoggerLogToolCall(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Component: "host"})

	logger.LogToolCall("ticketing-system", 5*time.Millisecond, true, nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Tool execution completed", entry["msg"])
	assert.Equal(t, "host", entry["component"])
	assert.Equal(t, "ticketing-system", entry["tool_id"])
	assert.Equal(t, true, entry["success"])

	buf.Reset()
	logger.LogToolCall("log-analyzer", time.Millisecond, false, fmt.Errorf("boom"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Tool execution failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestMeshLoggerLogSyncAttempt(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})

	logger.LogSyncAttempt("transition", "PROJ-1", "applied", nil)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "External sync attempt", entry["msg"])
	assert.Equal(t, "transition", entry["sync_op"])
	assert.Equal(t, "PROJ-1", entry["issue_key"])
	assert.Equal(t, "applied", entry["outcome"])

	buf.Reset()
	logger.LogSyncAttempt("comment", "PROJ-1", "failed", fmt.Errorf("unreachable"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "unreachable", entry["error"])
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
}
