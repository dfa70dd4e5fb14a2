// Package ui owns the presentation state. A single Loop goroutine drains
// worker events from a Queue, applies them in order and hands the result
// to renderers. Other goroutines only ever see published snapshots.
package ui

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-moodbot/internal/log"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
)

// Renderer presents applied events. Render is called from the loop
// goroutine and must not block.
type Renderer interface {
	Render(ev pipeline.UpdateEvent, snap *Snapshot)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ev pipeline.UpdateEvent, snap *Snapshot)

// Render calls f.
func (f RendererFunc) Render(ev pipeline.UpdateEvent, snap *Snapshot) { f(ev, snap) }

// Loop is the UI context.
type Loop struct {
	queue  *Queue
	state  *State
	snap   atomic.Pointer[Snapshot]
	logger *slog.Logger

	mu        sync.Mutex
	renderers []Renderer
}

// NewLoop creates a loop reading from q.
func NewLoop(q *Queue, historySize int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = log.Component("ui")
	}
	l := &Loop{
		queue:  q,
		state:  NewState(historySize),
		logger: logger,
	}
	l.snap.Store(l.state.Snapshot())
	return l
}

// AddRenderer registers r for subsequent events.
func (l *Loop) AddRenderer(r Renderer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.renderers = append(l.renderers, r)
}

// Snapshot returns the latest published state. Safe from any goroutine.
func (l *Loop) Snapshot() *Snapshot {
	return l.snap.Load()
}

// Run processes events until ctx is cancelled. Events still queued at
// cancellation are applied before returning.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("ui loop started")
	defer l.logger.Info("ui loop stopped")

	for {
		select {
		case <-ctx.Done():
			l.Process(l.queue.Drain())
			return ctx.Err()
		case <-l.queue.Ready():
			l.Process(l.queue.Drain())
		}
	}
}

// Process applies events in order. Run calls it; tests may call it
// directly instead of starting the loop.
func (l *Loop) Process(events []pipeline.UpdateEvent) {
	if len(events) == 0 {
		return
	}

	l.mu.Lock()
	renderers := append([]Renderer(nil), l.renderers...)
	l.mu.Unlock()

	for _, ev := range events {
		if !l.state.Apply(ev) {
			continue
		}
		snap := l.state.Snapshot()
		l.snap.Store(snap)
		if ev.Notice != "" {
			l.logger.Warn(ev.Notice)
		}
		for _, r := range renderers {
			r.Render(ev, snap)
		}
	}
}
