// Package pipeline runs the capture and classify loop on its own
// goroutine and hands one UpdateEvent per frame to a Dispatcher.
//
// The loop never touches presentation state. Everything it produces,
// including the encoded frame, travels inside the event.
package pipeline

import (
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/emotion"
	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
)

// Frame is one captured image. The worker closes every frame it reads.
type Frame interface {
	Size() image.Point
	Annotate(dets []detection.Detection)
	JPEG(quality int) ([]byte, error)
	Close() error
}

// Camera yields frames until closed.
type Camera interface {
	Read() (Frame, error)
	Close() error
}

// CameraOpener acquires the camera when the worker starts.
type CameraOpener func() (Camera, error)

// Analyzer locates faces in a frame and classifies each one.
// Detections are returned in locator order.
type Analyzer interface {
	Analyze(f Frame) ([]detection.Detection, error)
}

// Dispatcher receives events from the worker. Enqueue must not block.
type Dispatcher interface {
	Enqueue(ev UpdateEvent)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ev UpdateEvent)

// Enqueue calls f(ev).
func (f DispatcherFunc) Enqueue(ev UpdateEvent) { f(ev) }

// Mode is fixed at boot.
type Mode string

const (
	ModeLive       Mode = "live"
	ModeSimulation Mode = "simulation"
)

// Outcome classifies one loop iteration.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeNoFrame means the camera returned nothing. No event is sent.
	OutcomeNoFrame
	// OutcomeInferenceFailed means the analyzer errored. The frame is
	// treated as having no face and the event is still sent.
	OutcomeInferenceFailed
	// OutcomeEncodeFailed means the frame could not be encoded. The event
	// is sent without image bytes.
	OutcomeEncodeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoFrame:
		return "no_frame"
	case OutcomeInferenceFailed:
		return "inference_failed"
	case OutcomeEncodeFailed:
		return "encode_failed"
	default:
		return "unknown"
	}
}

// UpdateEvent is everything the UI needs to reflect one iteration.
type UpdateEvent struct {
	ID    uuid.UUID
	RunID uuid.UUID
	Seq   uint64

	Frame      []byte // JPEG, owned by the event
	FrameSize  image.Point
	Detections []detection.Detection

	Observed emotion.Emotion // Empty when no face was found
	Decision stabilizer.Decision
	Emotion  emotion.Emotion // Locked emotion, empty while idle
	Color    string          // Hex color of Emotion
	Response string          // Set only when Decision emits

	// Notice is a one-time message for the user. Notice events carry no
	// frame and no decision.
	Notice string

	Timestamp time.Time
}

// HasResponse reports whether the event replaces the displayed response.
func (ev UpdateEvent) HasResponse() bool {
	return ev.Decision.Emits()
}

// NoticeEvent builds an event that only carries a message.
func NoticeEvent(msg string, at time.Time) UpdateEvent {
	return UpdateEvent{ID: uuid.New(), Notice: msg, Timestamp: at}
}
