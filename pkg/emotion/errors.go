package emotion

import "errors"

var (
	// ErrUnknownEmotion is returned when a label is not one of the seven emotions.
	ErrUnknownEmotion = errors.New("emotion: unknown label")

	// ErrIndexOutOfRange is returned when a classifier index has no label.
	ErrIndexOutOfRange = errors.New("emotion: index out of range")

	// ErrBadScores is returned when a probability vector has the wrong length.
	ErrBadScores = errors.New("emotion: malformed score vector")
)
