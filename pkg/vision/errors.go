package vision

import "errors"

var (
	// ErrModelNotFound is returned when a model or cascade file is missing.
	// Callers fall back to simulated emotions.
	ErrModelNotFound = errors.New("vision: model not found")

	// ErrModelLoad is returned when a model file exists but cannot be loaded.
	ErrModelLoad = errors.New("vision: model failed to load")

	// ErrInference is returned when classification produces unusable output.
	ErrInference = errors.New("vision: inference failed")

	// ErrCameraOpen is returned when the capture device cannot be opened.
	ErrCameraOpen = errors.New("vision: camera unavailable")

	// ErrEmptyFrame is returned when the device delivers no image.
	ErrEmptyFrame = errors.New("vision: empty frame")

	// ErrUnsupportedFrame is returned when the analyzer is handed a frame
	// that is not backed by an OpenCV matrix.
	ErrUnsupportedFrame = errors.New("vision: unsupported frame type")
)
