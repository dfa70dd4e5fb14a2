// Package vision is the OpenCV edge of moodbot: webcam capture, face
// location, emotion classification and frame annotation.
package vision

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodbot/pkg/debug"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
)

// Analyzer locates faces and classifies each one.
type Analyzer struct {
	locator    FaceLocator
	classifier *Classifier
	logger     *slog.Logger
}

// NewAnalyzer loads the locator and classifier described by cfg. If either
// model is missing the error wraps ErrModelNotFound.
func NewAnalyzer(cfg detection.Config, logger *slog.Logger) (*Analyzer, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid detection config: %v", issues)
	}

	classifier, err := NewClassifier(cfg.ClassifierPath, cfg.ClassifierSize)
	if err != nil {
		return nil, err
	}
	locator, err := NewLocator(cfg)
	if err != nil {
		classifier.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("emotion analyzer ready",
		"locator", cfg.Locator, "classifier", cfg.ClassifierPath)
	return &Analyzer{locator: locator, classifier: classifier, logger: logger}, nil
}

// Analyze implements pipeline.Analyzer. Detections come back in locator
// order.
func (a *Analyzer) Analyze(f pipeline.Frame) ([]detection.Detection, error) {
	mf, ok := f.(*MatFrame)
	if !ok {
		return nil, ErrUnsupportedFrame
	}
	img := mf.Mat()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	rects, err := a.locator.Locate(img, gray)
	if err != nil {
		return nil, fmt.Errorf("%w: locate: %v", ErrInference, err)
	}

	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	dets := make([]detection.Detection, 0, len(rects))
	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		roi := gray.Region(r)
		e, p, err := a.classifier.Classify(roi)
		roi.Close()
		if err != nil {
			return nil, err
		}
		dets = append(dets, detection.Detection{Box: r, Emotion: e, Confidence: p})
	}

	if len(dets) > 0 {
		debug.FrameLog(a.logger, "faces classified", "count", len(dets), "first", dets[0].Emotion)
	}
	return dets, nil
}

// Close releases both models.
func (a *Analyzer) Close() error {
	return errors.Join(a.locator.Close(), a.classifier.Close())
}
