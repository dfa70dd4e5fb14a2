// Package camera holds the capture settings for the webcam. Settings can
// be changed at runtime through the dashboard; they take effect the next
// time the pipeline opens the device.
package camera

import "fmt"

// Config holds capture settings.
type Config struct {
	// Device is a numeric camera index ("0") or a file path or stream URL.
	Device    string `json:"device"`
	Width     int    `json:"width"`     // Requested frame width in pixels
	Height    int    `json:"height"`    // Requested frame height in pixels
	Framerate int    `json:"framerate"` // Requested FPS
	Quality   int    `json:"quality"`   // JPEG quality 1-100 for dashboard frames

	// Brightness is passed to the driver (0 to 1). Negative leaves the
	// driver default untouched.
	Brightness float64 `json:"brightness"`

	// Exposure is the driver exposure value. Zero means auto.
	Exposure float64 `json:"exposure"`

	// Mirror flips frames horizontally so the preview behaves like a mirror.
	Mirror bool `json:"mirror"`
}

// Limits for requested capture sizes.
const (
	MinWidth     = 160
	MinHeight    = 120
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns the standard webcam configuration.
func DefaultConfig() Config {
	return Config{
		Device:     "0",
		Width:      640,
		Height:     480,
		Framerate:  30,
		Quality:    80,
		Brightness: -1,
		Exposure:   0,
		Mirror:     true,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device is required")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.Brightness > 1 {
		errors = append(errors, "brightness must be negative (driver default) or between 0 and 1")
	}
	if c.Exposure < 0 {
		errors = append(errors, "exposure must be 0 (auto) or positive")
	}

	return errors
}
