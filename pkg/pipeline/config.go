package pipeline

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
)

// Config controls loop pacing.
type Config struct {
	FrameInterval      time.Duration // Loop period (default 33ms)
	CycleInterval      time.Duration // Stabilizer refresh period (default 5s)
	SimulationInterval time.Duration // Synthetic emotion period (default 3s)
	JPEGQuality        int           // 1-100 (default 80)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FrameInterval:      33 * time.Millisecond,
		CycleInterval:      stabilizer.DefaultCycleInterval,
		SimulationInterval: 3 * time.Second,
		JPEGQuality:        80,
	}
}

// Validate checks the configuration and returns a list of problems.
func (c Config) Validate() []string {
	var issues []string
	if c.FrameInterval <= 0 {
		issues = append(issues, fmt.Sprintf("frame interval must be positive, got %v", c.FrameInterval))
	}
	if c.CycleInterval <= 0 {
		issues = append(issues, fmt.Sprintf("cycle interval must be positive, got %v", c.CycleInterval))
	}
	if c.SimulationInterval <= 0 {
		issues = append(issues, fmt.Sprintf("simulation interval must be positive, got %v", c.SimulationInterval))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		issues = append(issues, fmt.Sprintf("jpeg quality must be 1-100, got %d", c.JPEGQuality))
	}
	return issues
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FrameInterval <= 0 {
		c.FrameInterval = d.FrameInterval
	}
	if c.CycleInterval <= 0 {
		c.CycleInterval = d.CycleInterval
	}
	if c.SimulationInterval <= 0 {
		c.SimulationInterval = d.SimulationInterval
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = d.JPEGQuality
	}
	return c
}
