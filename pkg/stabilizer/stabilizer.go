// Package stabilizer turns a noisy per-frame emotion signal into
// discrete lock changes and periodic refreshes.
//
// The stabilizer is either Idle or Locked to one emotion. Frames without a
// face never change the lock. A different emotion switches the lock at
// once and a held emotion is refreshed every CycleInterval.
package stabilizer

import (
	"time"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// DefaultCycleInterval is how long an emotion must stay locked before a
// refresh is emitted.
const DefaultCycleInterval = 5 * time.Second

// Kind is the outcome of one observation.
type Kind int

const (
	None Kind = iota
	Changed
	Cycle
)

func (k Kind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Cycle:
		return "cycle"
	default:
		return "none"
	}
}

// Decision is what the stabilizer concluded for one observation.
// Emotion is empty when Kind is None.
type Decision struct {
	Kind    Kind
	Emotion emotion.Emotion
}

// Emits reports whether the decision should produce a new response.
func (d Decision) Emits() bool {
	return d.Kind != None
}

// ForceNew reports whether the response generator should reset the
// emotion's used set before picking.
func (d Decision) ForceNew() bool {
	return d.Kind == Cycle
}

// Stabilizer is owned by the pipeline worker and is not safe for
// concurrent use.
type Stabilizer struct {
	interval time.Duration

	locked       bool
	current      emotion.Emotion
	since        time.Time
	lastEmission time.Time
}

// New returns an idle stabilizer. A non-positive interval uses the default.
func New(interval time.Duration) *Stabilizer {
	if interval <= 0 {
		interval = DefaultCycleInterval
	}
	return &Stabilizer{interval: interval}
}

// Observe feeds one iteration's result. An empty observed emotion means no
// face was found. t must not go backwards between calls.
func (s *Stabilizer) Observe(observed emotion.Emotion, t time.Time) Decision {
	if observed == "" {
		return Decision{}
	}

	if !s.locked || observed != s.current {
		s.locked = true
		s.current = observed
		s.since = t
		s.lastEmission = t
		return Decision{Kind: Changed, Emotion: observed}
	}

	if t.Sub(s.lastEmission) >= s.interval {
		s.lastEmission = t
		return Decision{Kind: Cycle, Emotion: observed}
	}
	return Decision{}
}

// Current returns the locked emotion. ok is false while idle.
func (s *Stabilizer) Current() (e emotion.Emotion, ok bool) {
	return s.current, s.locked
}

// Since returns when the current lock began.
func (s *Stabilizer) Since() time.Time {
	return s.since
}

// Interval returns the refresh interval in use.
func (s *Stabilizer) Interval() time.Duration {
	return s.interval
}

// Reset returns the stabilizer to idle.
func (s *Stabilizer) Reset() {
	*s = Stabilizer{interval: s.interval}
}
