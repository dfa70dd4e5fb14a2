package ui

import (
	"log/slog"
	"sync"

	"github.com/teslashibe/go-moodbot/pkg/metrics"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
)

// DefaultHighWater is the backlog size that triggers a warning.
const DefaultHighWater = 256

// Queue is an unbounded FIFO between the pipeline worker and the UI loop.
// Enqueue never blocks and never drops; Drain hands back everything
// pending in enqueue order.
type Queue struct {
	mu     sync.Mutex
	items  []pipeline.UpdateEvent
	notify chan struct{}

	highWater int
	warned    bool
	logger    *slog.Logger
}

// NewQueue creates an empty queue. A nil logger disables backlog warnings.
func NewQueue(logger *slog.Logger) *Queue {
	return &Queue{
		notify:    make(chan struct{}, 1),
		highWater: DefaultHighWater,
		logger:    logger,
	}
}

// Enqueue appends ev and wakes the consumer.
func (q *Queue) Enqueue(ev pipeline.UpdateEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	n := len(q.items)
	warn := false
	if n >= q.highWater && !q.warned {
		q.warned, warn = true, true
	}
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(n))
	if warn && q.logger != nil {
		q.logger.Warn("ui queue backlog", "depth", n)
	}

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every pending event.
func (q *Queue) Drain() []pipeline.UpdateEvent {
	q.mu.Lock()
	items := q.items
	q.items = nil
	if len(items) < q.highWater {
		q.warned = false
	}
	q.mu.Unlock()

	metrics.QueueDepth.Set(0)
	return items
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready is signalled after Enqueue. A single signal may cover many events.
func (q *Queue) Ready() <-chan struct{} {
	return q.notify
}
