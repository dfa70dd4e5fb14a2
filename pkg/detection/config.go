package detection

import "fmt"

// Locator kinds.
const (
	LocatorHaar  = "haar"
	LocatorYuNet = "yunet"
)

// Config holds face locator and classifier settings.
type Config struct {
	Locator          string  // "haar" or "yunet"
	CascadePath      string  // Haar cascade XML
	YuNetPath        string  // YuNet ONNX model
	ClassifierPath   string  // Emotion classifier ONNX model
	ConfidenceThresh float64 // Minimum YuNet face score (default 0.5)
	ScaleFactor      float64 // Haar scale step (default 1.3)
	MinNeighbors     int     // Haar neighbour count (default 5)
	InputWidth       int     // YuNet input width
	InputHeight      int     // YuNet input height
	ClassifierSize   int     // Square classifier input edge (default 48)
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Locator:          LocatorHaar,
		CascadePath:      "models/haarcascade_frontalface_default.xml",
		YuNetPath:        "models/face_detection_yunet.onnx",
		ClassifierPath:   "models/emotiondetector.onnx",
		ConfidenceThresh: 0.5,
		ScaleFactor:      1.3,
		MinNeighbors:     5,
		InputWidth:       320,
		InputHeight:      320,
		ClassifierSize:   48,
	}
}

// Validate checks the configuration and returns a list of problems.
func (c Config) Validate() []string {
	var issues []string
	switch c.Locator {
	case LocatorHaar:
		if c.CascadePath == "" {
			issues = append(issues, "cascade path is required for the haar locator")
		}
		if c.ScaleFactor <= 1 {
			issues = append(issues, fmt.Sprintf("scale factor must be > 1, got %.2f", c.ScaleFactor))
		}
		if c.MinNeighbors < 0 {
			issues = append(issues, fmt.Sprintf("min neighbors must be >= 0, got %d", c.MinNeighbors))
		}
	case LocatorYuNet:
		if c.YuNetPath == "" {
			issues = append(issues, "yunet model path is required for the yunet locator")
		}
		if c.InputWidth <= 0 || c.InputHeight <= 0 {
			issues = append(issues, fmt.Sprintf("yunet input size must be positive, got %dx%d", c.InputWidth, c.InputHeight))
		}
	default:
		issues = append(issues, fmt.Sprintf("unknown locator %q (want haar or yunet)", c.Locator))
	}
	if c.ConfidenceThresh < 0 || c.ConfidenceThresh > 1 {
		issues = append(issues, fmt.Sprintf("confidence threshold must be 0-1, got %.2f", c.ConfidenceThresh))
	}
	if c.ClassifierSize <= 0 {
		issues = append(issues, fmt.Sprintf("classifier size must be positive, got %d", c.ClassifierSize))
	}
	return issues
}
