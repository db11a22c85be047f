package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sgerrors "github.com/conneroisu/smallgears/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Format: "json", Output: &buf})

	logger.Debug(context.Background(), "dropped")
	logger.Info(context.Background(), "dropped")
	logger.Warn(context.Background(), nil, "kept")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0]["msg"])
	assert.Equal(t, "WARN", records[0]["level"])
}

func TestLogger_FieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf}).
		WithComponent("locator").
		With("file", "app.yml")

	logger.Info(context.Background(), "loading configuration", "path", "/etc/app.yml")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "locator", records[0]["component"])
	assert.Equal(t, "app.yml", records[0]["file"])
	assert.Equal(t, "/etc/app.yml", records[0]["path"])
}

func TestLogger_StructuredErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	err := sgerrors.NewConfigError(sgerrors.ErrCodeInvalidLocation, "not a readable directory").
		WithContext("location", "/nope")
	logger.Error(context.Background(), err, "cannot locate configuration")
	logger.Error(context.Background(), errors.New("plain"), "plain failure")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "config", records[0]["error_type"])
	assert.Equal(t, "/nope", records[0]["location"])
	assert.Equal(t, "plain", records[1]["error"])
	assert.NotContains(t, records[1], "error_type")
}

func TestDiscard(t *testing.T) {
	logger := Discard()

	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "nothing to see")
	})
}
