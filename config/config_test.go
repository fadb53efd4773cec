package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetApplicationConfig_Defaults(t *testing.T) {
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))

	v, err := InitConfig()
	require.NoError(t, err)

	cfg, err := GetApplicationConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "capture-api", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "pulse", cfg.CaptureConfig.Microphone)
	assert.Equal(t, 48000, cfg.CaptureConfig.SampleRate)
	assert.Equal(t, 1, cfg.CaptureConfig.Channels)
	assert.Equal(t, 1024, cfg.CaptureConfig.FramesPerRead)
	assert.Equal(t, "memory", cfg.ArtifactConfig.Store)
	assert.Equal(t, time.Hour, cfg.ArtifactConfig.TTL())
	assert.Equal(t, 10*time.Second, cfg.ArtifactConfig.PublishTimeout())
	assert.Equal(t, time.Second, cfg.CaptureConfig.Timeslice())
	assert.Equal(t, 64, cfg.CaptureConfig.EventBuffer)
	assert.Equal(t, 50, cfg.LogMaxSizeMB)
	assert.Equal(t, "localhost:6379", cfg.RedisConfig.Addr())
}

func TestGetApplicationConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.env")
	content := "PORT=8088\nCAPTURE__MICROPHONE=file\nCAPTURE__FILE=/tmp/take.wav\nARTIFACT__STORE=redis\nREDIS__PORT=6380\n" +
		"ARTIFACT__PUBLISH_TIMEOUT_MS=2500\nLOG_MAX_SIZE_MB=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ENV_PATH", path)

	v, err := InitConfig()
	require.NoError(t, err)
	cfg, err := GetApplicationConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "file", cfg.CaptureConfig.Microphone)
	assert.Equal(t, "/tmp/take.wav", cfg.CaptureConfig.File)
	assert.Equal(t, "redis", cfg.ArtifactConfig.Store)
	assert.Equal(t, 6380, cfg.RedisConfig.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.ArtifactConfig.PublishTimeout())
	assert.Equal(t, 5, cfg.LogMaxSizeMB)
}

func TestGetApplicationConfig_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown microphone", "CAPTURE__MICROPHONE=webcam\n"},
		{"file backend without file", "CAPTURE__MICROPHONE=file\n"},
		{"unknown store", "ARTIFACT__STORE=s3\n"},
		{"sample rate too low", "CAPTURE__SAMPLE_RATE=100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			t.Setenv("ENV_PATH", path)

			v, err := InitConfig()
			require.NoError(t, err)
			_, err = GetApplicationConfig(v)
			assert.Error(t, err)
		})
	}
}
