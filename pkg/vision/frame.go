package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// BoxColor is the face rectangle color.
var BoxColor = color.RGBA{G: 255, A: 255}

// MatFrame is a captured BGR image. It owns its matrix.
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame wraps mat. The frame takes ownership.
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Mat exposes the underlying matrix. It stays owned by the frame.
func (f *MatFrame) Mat() gocv.Mat {
	return f.mat
}

// Size returns width and height in pixels.
func (f *MatFrame) Size() image.Point {
	return image.Pt(f.mat.Cols(), f.mat.Rows())
}

// Annotate draws each box with its label above it in the emotion color.
func (f *MatFrame) Annotate(dets []detection.Detection) {
	for _, d := range dets {
		gocv.Rectangle(&f.mat, d.Box, BoxColor, 2)
		origin := image.Pt(d.Box.Min.X, d.Box.Min.Y-10)
		if origin.Y < 20 {
			origin.Y = d.Box.Max.Y + 25
		}
		gocv.PutText(&f.mat, d.Label(), origin, gocv.FontHersheySimplex, 0.9, emotion.Color(d.Emotion), 2)
	}
}

// JPEG encodes the frame. The returned slice is owned by the caller.
func (f *MatFrame) JPEG(quality int) ([]byte, error) {
	if f.mat.Empty() {
		return nil, ErrEmptyFrame
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, f.mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	src := buf.GetBytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// Close releases the matrix.
func (f *MatFrame) Close() error {
	return f.mat.Close()
}
