package pipeline

import "errors"

var (
	// ErrNoCamera is returned by Start when the worker has no way to open a camera.
	ErrNoCamera = errors.New("pipeline: no camera opener")

	// ErrNoDispatcher is returned by New when events have nowhere to go.
	ErrNoDispatcher = errors.New("pipeline: no dispatcher")
)
