package vision

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodbot/pkg/detection"
)

// FaceLocator finds face rectangles. img is the BGR frame and gray its
// grayscale copy; a locator uses whichever it needs.
type FaceLocator interface {
	Locate(img, gray gocv.Mat) ([]image.Rectangle, error)
	Close() error
}

// NewLocator builds the locator selected by cfg.Locator.
func NewLocator(cfg detection.Config) (FaceLocator, error) {
	switch cfg.Locator {
	case detection.LocatorYuNet:
		return NewYuNetLocator(cfg)
	case detection.LocatorHaar, "":
		return NewHaarLocator(cfg)
	default:
		return nil, fmt.Errorf("unknown locator %q", cfg.Locator)
	}
}

// HaarLocator uses a Haar cascade on the grayscale frame.
type HaarLocator struct {
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	mu           sync.Mutex
}

// NewHaarLocator loads the cascade at cfg.CascadePath.
func NewHaarLocator(cfg detection.Config) (*HaarLocator, error) {
	if _, err := os.Stat(cfg.CascadePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.CascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: cascade %s", ErrModelLoad, cfg.CascadePath)
	}

	scale := cfg.ScaleFactor
	if scale <= 1 {
		scale = 1.3
	}
	return &HaarLocator{
		classifier:   classifier,
		scaleFactor:  scale,
		minNeighbors: cfg.MinNeighbors,
	}, nil
}

// Locate runs the cascade on gray.
func (h *HaarLocator) Locate(_, gray gocv.Mat) ([]image.Rectangle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gray.Empty() {
		return nil, ErrEmptyFrame
	}
	return h.classifier.DetectMultiScaleWithParams(gray, h.scaleFactor, h.minNeighbors, 0,
		image.Pt(30, 30), image.Pt(0, 0)), nil
}

// Close releases the cascade.
func (h *HaarLocator) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.classifier.Close()
}

// YuNetLocator uses OpenCV's FaceDetectorYN on the color frame.
type YuNetLocator struct {
	detector gocv.FaceDetectorYN
	mu       sync.Mutex
}

// NewYuNetLocator loads the YuNet ONNX model at cfg.YuNetPath.
func NewYuNetLocator(cfg detection.Config) (*YuNetLocator, error) {
	if _, err := os.Stat(cfg.YuNetPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.YuNetPath)
	}

	// Input size is replaced per frame.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.YuNetPath,
		"",
		image.Pt(cfg.InputWidth, cfg.InputHeight),
		float32(cfg.ConfidenceThresh),
		0.3,  // NMS threshold
		5000, // Top K
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetLocator{detector: detector}, nil
}

// Locate runs YuNet on img.
func (y *YuNetLocator) Locate(img, _ gocv.Mat) ([]image.Rectangle, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if img.Empty() {
		return nil, ErrEmptyFrame
	}

	y.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	y.detector.Detect(img, &faces)

	// Row layout: x, y, w, h, five landmark pairs, score.
	rects := make([]image.Rectangle, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		x := int(faces.GetFloatAt(r, 0))
		yy := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		rects = append(rects, image.Rect(x, yy, x+w, yy+h))
	}
	return rects, nil
}

// Close releases the detector.
func (y *YuNetLocator) Close() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.detector.Close()
	return nil
}
