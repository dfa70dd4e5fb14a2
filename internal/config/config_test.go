package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// An explicit path that does not exist is an error.
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Chdir(t.TempDir())
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "0", cfg.Camera.Device)
	assert.Equal(t, 640, cfg.Camera.Width)
	assert.Equal(t, "haar", cfg.Model.Locator)
	assert.Equal(t, 33*time.Millisecond, cfg.Pipeline.FrameInterval)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.CycleInterval)
	assert.Equal(t, 3*time.Second, cfg.Pipeline.SimulationInterval)
	assert.Equal(t, 10, cfg.UI.HistorySize)
	assert.Equal(t, "8080", cfg.Web.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
camera:
  device: "/dev/video2"
  width: 1280
  height: 720
pipeline:
  cycle_interval: 8s
  simulate: true
model:
  locator: yunet
`
	path := filepath.Join(dir, "moodbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("MOODBOT_WEB_PORT", "9090")
	t.Setenv("MOODBOT_CAMERA_WIDTH", "800")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/dev/video2", cfg.Camera.Device)
	assert.Equal(t, 800, cfg.Camera.Width, "env beats file")
	assert.Equal(t, 720, cfg.Camera.Height)
	assert.Equal(t, 8*time.Second, cfg.Pipeline.CycleInterval)
	assert.True(t, cfg.Pipeline.Simulate)
	assert.Equal(t, "yunet", cfg.Model.Locator)
	assert.Equal(t, "9090", cfg.Web.Port)

	assert.Equal(t, 8*time.Second, cfg.PipelineSettings().CycleInterval)
	assert.Equal(t, "yunet", cfg.Detection().Locator)
	assert.Equal(t, 800, cfg.CameraSettings().Width)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"camera", map[string]string{"MOODBOT_CAMERA_JPEG_QUALITY": "0"}, "camera"},
		{"locator", map[string]string{"MOODBOT_MODEL_LOCATOR": "dlib"}, "model"},
		{"history", map[string]string{"MOODBOT_UI_HISTORY_SIZE": "0"}, "ui.history_size"},
		{"pipeline", map[string]string{"MOODBOT_PIPELINE_FRAME_INTERVAL": "-1s"}, "pipeline"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(New(), "")
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}
