package vision

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
)

// Capture reads frames from a webcam, video file or stream.
type Capture struct {
	cap    *gocv.VideoCapture
	config camera.Config
	mu     sync.Mutex
}

// OpenCapture opens the configured device and requests its settings.
// Drivers may ignore the requested size or rate.
func OpenCapture(cfg camera.Config, logger *slog.Logger) (*Capture, error) {
	if _, err := strconv.Atoi(cfg.Device); err != nil {
		if _, statErr := os.Stat(cfg.Device); statErr != nil && !isURL(cfg.Device) {
			return nil, fmt.Errorf("%w: %s", ErrCameraOpen, cfg.Device)
		}
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCameraOpen, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrCameraOpen, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	if cfg.Brightness >= 0 {
		vc.Set(gocv.VideoCaptureBrightness, cfg.Brightness)
	}
	if cfg.Exposure > 0 {
		vc.Set(gocv.VideoCaptureExposure, cfg.Exposure)
	}

	if logger != nil {
		logger.Info("camera opened",
			"device", cfg.Device,
			"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
			"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
			"fps", vc.Get(gocv.VideoCaptureFPS))
	}

	return &Capture{cap: vc, config: cfg}, nil
}

// Opener returns a pipeline.CameraOpener that reads the current settings
// from mgr each time the pipeline starts.
func Opener(mgr *camera.Manager, logger *slog.Logger) pipeline.CameraOpener {
	return func() (pipeline.Camera, error) {
		return OpenCapture(mgr.GetConfig(), logger)
	}
}

// Read grabs the next frame. A failed grab returns ErrEmptyFrame; the
// pipeline skips that iteration.
func (c *Capture) Read() (pipeline.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mat := gocv.NewMat()
	if ok := c.cap.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	if c.config.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return NewMatFrame(mat), nil
}

// Close releases the device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cap.Close()
}

func isURL(s string) bool {
	for _, p := range []string{"rtsp://", "http://", "https://", "udp://", "tcp://"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
