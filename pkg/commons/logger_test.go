package commons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewApplicationLogger_WritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(Name("test-logger"), Path(dir), Level("debug"), Console(false))
	require.NoError(t, err)

	logger.Infof("recording started id=%s", "abc")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "test-logger.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "recording started id=abc")
}

func TestNewApplicationLogger_Level(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			logger, err := NewApplicationLogger(Path(t.TempDir()), Level(tt.input), Console(false))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, logger.Level())
		})
	}
}

func TestNewApplicationLogger_DebugSuppressedAtInfo(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewApplicationLogger(Name("quiet"), Path(dir), Level("info"), Console(false))
	require.NoError(t, err)

	logger.Debugf("hidden fragment")
	logger.Warnf("visible warning")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "quiet.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden fragment")
	assert.Contains(t, string(data), "visible warning")
}
