package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "json", Output: &buf, Service: "tetress"})

	logger.Info("dropped")
	logger.Warn("kept", "turn", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "tetress", rec["service"])
	assert.Equal(t, float64(3), rec["turn"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "debug", Output: &buf}).Debug("search finished", "rollouts", 200)
	assert.Contains(t, buf.String(), "msg=\"search finished\"")
	assert.Contains(t, buf.String(), "rollouts=200")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Level: "info", Format: "JSON"}.Validate())
	assert.Error(t, Config{Format: "xml"}.Validate())
	assert.Error(t, Config{Level: "trace"}.Validate())
}
