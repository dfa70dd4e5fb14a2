package ui

import (
	"fmt"
	"image"
	"time"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
)

// Initial display text.
const (
	WaitingLabel    = "Waiting for emotion detection..."
	WaitingResponse = "I'm analyzing your emotions to provide a personalized response..."
)

// Indicator is the emotion label and its color.
type Indicator struct {
	Emotion emotion.Emotion `json:"emotion,omitempty"`
	Label   string          `json:"label"`
	Color   string          `json:"color"`
}

// State is the presentation state. Only the UI loop mutates it.
type State struct {
	indicator Indicator
	response  string
	history   *History
	frame     []byte
	frameSize image.Point
	notices   []string
	seen      map[string]bool
	seq       uint64
	updatedAt time.Time
}

// NewState returns the initial state.
func NewState(historySize int) *State {
	return &State{
		indicator: Indicator{Label: WaitingLabel, Color: emotion.DefaultHex},
		response:  WaitingResponse,
		history:   NewHistory(historySize),
		seen:      make(map[string]bool),
	}
}

// Apply folds ev into the state and reports whether anything visible
// changed. Repeated notices are ignored.
func (s *State) Apply(ev pipeline.UpdateEvent) bool {
	if ev.Notice != "" {
		if s.seen[ev.Notice] {
			return false
		}
		s.seen[ev.Notice] = true
		s.notices = append(s.notices, ev.Notice)
		s.updatedAt = ev.Timestamp
		return true
	}

	if ev.Frame != nil {
		s.frame = ev.Frame
		s.frameSize = ev.FrameSize
	}
	s.seq = ev.Seq
	s.updatedAt = ev.Timestamp

	switch ev.Decision.Kind {
	case stabilizer.Changed:
		e := ev.Decision.Emotion
		s.indicator = Indicator{
			Emotion: e,
			Label:   fmt.Sprintf("Current emotion: %s", e),
			Color:   emotion.Hex(e),
		}
		s.history.Add(e, ev.Timestamp)
		s.response = ev.Response
	case stabilizer.Cycle:
		s.response = ev.Response
	}
	return true
}

// Snapshot returns an immutable copy of the state.
func (s *State) Snapshot() *Snapshot {
	return &Snapshot{
		Indicator: s.indicator,
		Response:  s.response,
		History:   s.history.Lines(),
		Frame:     s.frame,
		FrameSize: s.frameSize,
		Notices:   append([]string(nil), s.notices...),
		Seq:       s.seq,
		UpdatedAt: s.updatedAt,
	}
}

// Snapshot is a read-only view of State published by the loop. Readers on
// other goroutines must not modify it.
type Snapshot struct {
	Indicator Indicator   `json:"indicator"`
	Response  string      `json:"response"`
	History   []string    `json:"history"`
	Frame     []byte      `json:"-"`
	FrameSize image.Point `json:"-"`
	Notices   []string    `json:"notices"`
	Seq       uint64      `json:"seq"`
	UpdatedAt time.Time   `json:"updated_at"`
}
