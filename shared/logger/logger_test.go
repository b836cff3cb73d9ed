package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_JSON(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantMsgs  []string
		addSource bool
	}{
		{name: "debug level", level: "debug", wantMsgs: []string{"debug", "info", "warn"}},
		{name: "info level", level: "info", wantMsgs: []string{"info", "warn"}},
		{name: "uppercase level", level: "WARN", wantMsgs: []string{"warn"}},
		{name: "unknown level defaults to info", level: "loud", wantMsgs: []string{"info", "warn"}},
		{name: "with source", level: "info", wantMsgs: []string{"info", "warn"}, addSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			logger, err := New(&Config{Level: tt.level, Format: "json", EnableSource: tt.addSource, writer: output})
			require.NoError(t, err)

			logger.Debug("debug")
			logger.Info("info", slog.Int("job_id", 7))
			logger.Warn("warn")

			entries := decodeLines(t, output)
			var msgs []string
			for _, e := range entries {
				msgs = append(msgs, e["msg"].(string))
				if tt.addSource {
					assert.Contains(t, e, "source")
				} else {
					assert.NotContains(t, e, "source")
				}
			}
			assert.Equal(t, tt.wantMsgs, msgs)
		})
	}
}

func TestNew_Console(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "console", writer: output})
	require.NoError(t, err)

	logger.Info("portal started", slog.Int("port", 8080))
	assert.Contains(t, output.String(), "portal started")
	assert.Contains(t, output.String(), "8080")
}

func TestNew_UnknownFormat(t *testing.T) {
	logger, err := New(&Config{Format: "xml", writer: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Nil(t, logger)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")

	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info("written to file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	_, err = New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.ErrorContains(t, err, "failed to open log file")
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger.Logger)
	assert.NoError(t, logger.Close())
}

func TestLogger_Derived(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Format: "json", writer: output})
	require.NoError(t, err)

	logger.ForService("portal-service", "1.2.0", "test").
		WithGroup("session").
		With(slog.String("id", "abc")).
		Info("session loaded")

	entries := decodeLines(t, output)
	require.Len(t, entries, 1)
	assert.Equal(t, "portal-service", entries[0]["service"])
	assert.Equal(t, "1.2.0", entries[0]["version"])
	assert.Equal(t, "test", entries[0]["env"])
	assert.Equal(t, map[string]any{"id": "abc"}, entries[0]["session"])
}
