package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"unknown", INFO},
		{"", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestJSONOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: WARN, Format: "json", Console: &buf, Source: "test"})
	require.NoError(t, err)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown 2", entry["message"])
	assert.Equal(t, "test", entry["source"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: ERROR, Format: "json", Console: &buf})
	require.NoError(t, err)

	l.Debug("before")
	assert.Empty(t, buf.String())

	l.SetLevel(DEBUG)
	assert.Equal(t, DEBUG, l.GetLevel())
	l.Debug("after")
	assert.Contains(t, buf.String(), "after")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: DEBUG, Format: "json", Console: &buf})
	require.NoError(t, err)

	l.WithFields(INFO, "process.created", map[string]interface{}{"pid": 42})
	assert.Contains(t, buf.String(), `"pid":42`)
	assert.Contains(t, buf.String(), `"message":"process.created"`)
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: INFO, Console: &buf})
	require.NoError(t, err)

	l.Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "INF")
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "procsup.log")
	var console bytes.Buffer

	l, err := NewLogger(Options{Level: INFO, Format: "json", Console: &console, FilePath: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Error("written to file")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestGlobalLoggerFallback(t *testing.T) {
	SetGlobalLogger(nil)
	assert.NotNil(t, GetGlobalLogger())

	var buf bytes.Buffer
	l, err := NewLogger(Options{Level: DEBUG, Format: "json", Console: &buf})
	require.NoError(t, err)
	SetGlobalLogger(l)
	t.Cleanup(func() { SetGlobalLogger(nil) })

	assert.Same(t, l, GetGlobalLogger())
	GetGlobalLogger().Info("global info")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}
