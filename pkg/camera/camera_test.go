package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Validate())
}

func TestPresets_Valid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			assert.Empty(t, cfg.Validate())
		})
	}

	assert.Nil(t, GetPreset("8k"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		issues int
	}{
		{"no device", func(c *Config) { c.Device = "" }, 1},
		{"tiny width", func(c *Config) { c.Width = 10 }, 1},
		{"huge height", func(c *Config) { c.Height = 5000 }, 1},
		{"zero fps", func(c *Config) { c.Framerate = 0 }, 1},
		{"quality", func(c *Config) { c.Quality = 101 }, 1},
		{"brightness", func(c *Config) { c.Brightness = 2 }, 1},
		{"exposure", func(c *Config) { c.Exposure = -1 }, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Len(t, cfg.Validate(), tc.issues)
		})
	}
}

func TestManager_UpdateConfig(t *testing.T) {
	base := DefaultConfig()
	base.Device = "/dev/video2"
	m := NewManager(base)

	err := m.UpdateConfig(map[string]interface{}{
		"preset":  Preset720p,
		"quality": float64(60),
		"mirror":  false,
	})
	require.NoError(t, err)

	got := m.GetConfig()
	assert.Equal(t, 1280, got.Width)
	assert.Equal(t, 720, got.Height)
	assert.Equal(t, 60, got.Quality, "field overrides apply after the preset")
	assert.False(t, got.Mirror)
	assert.Equal(t, "/dev/video2", got.Device, "preset keeps the device")
	assert.Equal(t, float64(1280), m.GetConfigJSON()["width"])
}

func TestManager_RejectsLeaveConfigUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"unknown preset", map[string]interface{}{"preset": "8k"}},
		{"width too small", map[string]interface{}{"width": float64(1)}},
		{"quality too high", map[string]interface{}{"quality": float64(120), "width": float64(1280)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(DefaultConfig())
			assert.Error(t, m.UpdateConfig(tc.params))
			assert.Equal(t, DefaultConfig(), m.GetConfig())
		})
	}
}
