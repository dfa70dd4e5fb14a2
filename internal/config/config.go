// Package config loads moodbot settings from defaults, an optional YAML
// file, a .env file, MOODBOT_* environment variables and command flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
)

// EnvPrefix is prepended to every environment override, e.g. MOODBOT_WEB_PORT.
const EnvPrefix = "MOODBOT"

// Config holds the complete application configuration
type Config struct {
	Camera    CameraConfig    `mapstructure:"camera"`
	Model     ModelConfig     `mapstructure:"model"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Responses ResponsesConfig `mapstructure:"responses"`
	UI        UIConfig        `mapstructure:"ui"`
	Web       WebConfig       `mapstructure:"web"`
	Log       LogConfig       `mapstructure:"log"`
}

// CameraConfig holds capture settings
type CameraConfig struct {
	Device      string  `mapstructure:"device"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
	FPS         int     `mapstructure:"fps"`
	JPEGQuality int     `mapstructure:"jpeg_quality"`
	Brightness  float64 `mapstructure:"brightness"`
	Exposure    float64 `mapstructure:"exposure"`
	Mirror      bool    `mapstructure:"mirror"`
}

// ModelConfig holds face locator and classifier paths
type ModelConfig struct {
	Classifier string  `mapstructure:"classifier"`
	Locator    string  `mapstructure:"locator"` // haar or yunet
	Cascade    string  `mapstructure:"cascade"`
	YuNet      string  `mapstructure:"yunet"`
	Confidence float64 `mapstructure:"confidence"`
	InputSize  int     `mapstructure:"input_size"`
}

// PipelineConfig holds loop pacing
type PipelineConfig struct {
	FrameInterval      time.Duration `mapstructure:"frame_interval"`
	CycleInterval      time.Duration `mapstructure:"cycle_interval"`
	SimulationInterval time.Duration `mapstructure:"simulation_interval"`
	Seed               uint64        `mapstructure:"seed"` // 0 picks a time-based seed
	Simulate           bool          `mapstructure:"simulate"`
	AutoStart          bool          `mapstructure:"auto_start"`
}

// ResponsesConfig points at an optional custom response file
type ResponsesConfig struct {
	File string `mapstructure:"file"`
}

// UIConfig holds presentation settings
type UIConfig struct {
	HistorySize int  `mapstructure:"history_size"`
	Terminal    bool `mapstructure:"terminal"`
}

// WebConfig holds dashboard settings
type WebConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Port      string `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Debug  bool   `mapstructure:"debug"`
	Frames bool   `mapstructure:"frames"`
}

// New returns a viper instance with defaults and environment bindings.
// Callers may bind command flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	cam := camera.DefaultConfig()
	v.SetDefault("camera.device", cam.Device)
	v.SetDefault("camera.width", cam.Width)
	v.SetDefault("camera.height", cam.Height)
	v.SetDefault("camera.fps", cam.Framerate)
	v.SetDefault("camera.jpeg_quality", cam.Quality)
	v.SetDefault("camera.brightness", cam.Brightness)
	v.SetDefault("camera.exposure", cam.Exposure)
	v.SetDefault("camera.mirror", cam.Mirror)

	det := detection.DefaultConfig()
	v.SetDefault("model.classifier", det.ClassifierPath)
	v.SetDefault("model.locator", det.Locator)
	v.SetDefault("model.cascade", det.CascadePath)
	v.SetDefault("model.yunet", det.YuNetPath)
	v.SetDefault("model.confidence", det.ConfidenceThresh)
	v.SetDefault("model.input_size", det.ClassifierSize)

	p := pipeline.DefaultConfig()
	v.SetDefault("pipeline.frame_interval", p.FrameInterval)
	v.SetDefault("pipeline.cycle_interval", p.CycleInterval)
	v.SetDefault("pipeline.simulation_interval", p.SimulationInterval)
	v.SetDefault("pipeline.seed", 0)
	v.SetDefault("pipeline.simulate", false)
	v.SetDefault("pipeline.auto_start", false)

	v.SetDefault("responses.file", "")

	v.SetDefault("ui.history_size", 10)
	v.SetDefault("ui.terminal", false)

	v.SetDefault("web.enabled", true)
	v.SetDefault("web.port", "8080")
	v.SetDefault("web.static_dir", "./web")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.frames", false)
}

// Load reads .env, then the config file, and unmarshals the result.
// With an empty path, moodbot.yaml is looked up in the working directory
// and $HOME/.moodbot; a missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("moodbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.moodbot")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	cam := c.CameraSettings()
	if issues := cam.Validate(); len(issues) > 0 {
		return &ConfigError{Field: "camera", Message: "camera: " + strings.Join(issues, "; ")}
	}
	if issues := c.Detection().Validate(); len(issues) > 0 {
		return &ConfigError{Field: "model", Message: "model: " + strings.Join(issues, "; ")}
	}
	if issues := c.PipelineSettings().Validate(); len(issues) > 0 {
		return &ConfigError{Field: "pipeline", Message: "pipeline: " + strings.Join(issues, "; ")}
	}
	if c.UI.HistorySize <= 0 {
		return &ConfigError{Field: "ui.history_size", Message: fmt.Sprintf("ui.history_size must be positive, got %d", c.UI.HistorySize)}
	}
	if c.Web.Enabled && c.Web.Port == "" {
		return &ConfigError{Field: "web.port", Message: "web.port is required when the dashboard is enabled"}
	}
	return nil
}

// CameraSettings converts to the capture configuration.
func (c *Config) CameraSettings() camera.Config {
	return camera.Config{
		Device:     c.Camera.Device,
		Width:      c.Camera.Width,
		Height:     c.Camera.Height,
		Framerate:  c.Camera.FPS,
		Quality:    c.Camera.JPEGQuality,
		Brightness: c.Camera.Brightness,
		Exposure:   c.Camera.Exposure,
		Mirror:     c.Camera.Mirror,
	}
}

// Detection converts to the locator and classifier configuration.
func (c *Config) Detection() detection.Config {
	det := detection.DefaultConfig()
	det.Locator = c.Model.Locator
	det.ClassifierPath = c.Model.Classifier
	det.CascadePath = c.Model.Cascade
	det.YuNetPath = c.Model.YuNet
	det.ConfidenceThresh = c.Model.Confidence
	det.ClassifierSize = c.Model.InputSize
	return det
}

// PipelineSettings converts to the worker configuration.
func (c *Config) PipelineSettings() pipeline.Config {
	return pipeline.Config{
		FrameInterval:      c.Pipeline.FrameInterval,
		CycleInterval:      c.Pipeline.CycleInterval,
		SimulationInterval: c.Pipeline.SimulationInterval,
		JPEGQuality:        c.Camera.JPEGQuality,
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
