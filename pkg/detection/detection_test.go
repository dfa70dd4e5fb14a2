package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

func TestDetection_Center(t *testing.T) {
	tests := []struct {
		name   string
		det    Detection
		expect image.Point
	}{
		{
			name:   "centered box",
			det:    Detection{Box: image.Rect(160, 120, 480, 360)},
			expect: image.Pt(320, 240),
		},
		{
			name:   "top left corner",
			det:    Detection{Box: image.Rect(0, 0, 20, 20)},
			expect: image.Pt(10, 10),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.det.Center())
		})
	}
}

func TestDetection_Label(t *testing.T) {
	tests := []struct {
		name   string
		det    Detection
		expect string
	}{
		{"classified", Detection{Emotion: emotion.Happy, Confidence: 0.874}, "happy 87%"},
		{"synthetic", Detection{Emotion: emotion.Sad, Confidence: 1, Synthetic: true}, "sad"},
		{"no confidence", Detection{Emotion: emotion.Fear}, "fear"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.det.Label())
		})
	}
}

func TestPrimary(t *testing.T) {
	assert.Nil(t, Primary(nil))

	dets := []Detection{
		{Box: image.Rect(0, 0, 10, 10), Emotion: emotion.Sad, Confidence: 0.4},
		{Box: image.Rect(0, 0, 100, 100), Emotion: emotion.Happy, Confidence: 0.99},
	}
	got := Primary(dets)
	require.NotNil(t, got)
	assert.Equal(t, emotion.Sad, got.Emotion, "first detection wins")
}

func TestSynthetic(t *testing.T) {
	d := Synthetic(image.Pt(640, 480), emotion.Surprise)

	assert.Equal(t, image.Rect(160, 120, 480, 360), d.Box)
	assert.Equal(t, 320*240, d.Area())
	assert.True(t, d.Synthetic)
	assert.Equal(t, emotion.Surprise, d.Emotion)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		issues int
	}{
		{"defaults", func(*Config) {}, 0},
		{"yunet defaults", func(c *Config) { c.Locator = LocatorYuNet }, 0},
		{"unknown locator", func(c *Config) { c.Locator = "dlib" }, 1},
		{"haar bad scale", func(c *Config) { c.ScaleFactor = 1 }, 1},
		{"yunet no size", func(c *Config) { c.Locator = LocatorYuNet; c.InputWidth = 0 }, 1},
		{"bad threshold", func(c *Config) { c.ConfidenceThresh = 2 }, 1},
		{"no classifier size", func(c *Config) { c.ClassifierSize = 0 }, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Len(t, cfg.Validate(), tc.issues)
		})
	}
}
