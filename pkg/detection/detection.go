// Package detection describes classified faces in a frame and how the
// face locator is configured. It has no OpenCV dependency so the pipeline
// can be exercised without a camera.
package detection

import (
	"fmt"
	"image"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// Detection is one located face and the emotion classified for it.
type Detection struct {
	Box        image.Rectangle // Pixel bounds in frame coordinates
	Emotion    emotion.Emotion
	Confidence float32 // Classifier probability of Emotion (0-1)
	Synthetic  bool    // Produced by simulation, not the classifier
}

// Center returns the center point of the box.
func (d Detection) Center() image.Point {
	return image.Pt(d.Box.Min.X+d.Box.Dx()/2, d.Box.Min.Y+d.Box.Dy()/2)
}

// Area returns the area of the box in pixels.
func (d Detection) Area() int {
	return d.Box.Dx() * d.Box.Dy()
}

// Label is the annotation text drawn above the box.
func (d Detection) Label() string {
	if d.Synthetic || d.Confidence <= 0 {
		return string(d.Emotion)
	}
	return fmt.Sprintf("%s %.0f%%", d.Emotion, d.Confidence*100)
}

// Primary returns the detection whose emotion drives the stabilizer.
// Only the first face reported by the locator is considered.
func Primary(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}
	return &dets[0]
}

// Synthetic returns the fixed centered box used in simulation mode:
// a quarter inset from the top-left, half the frame wide and tall.
func Synthetic(frame image.Point, e emotion.Emotion) Detection {
	x, y := frame.X/4, frame.Y/4
	return Detection{
		Box:       image.Rect(x, y, x+frame.X/2, y+frame.Y/2),
		Emotion:   e,
		Synthetic: true,
	}
}
