package response

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// Rand is the random source used to pick among candidates.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a seeded source. Equal seeds give equal sequences.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator hands out responses for an emotion without repeating one until
// the emotion's pool is exhausted. The used set for an emotion is cleared
// when the requested emotion differs from the previous request, when a new
// response is forced, and when every response has been used.
//
// A Generator is owned by a single goroutine and is not safe for
// concurrent use.
type Generator struct {
	pool *Pool
	rng  Rand
	now  func() time.Time

	used    map[emotion.Emotion]map[string]bool
	last    emotion.Emotion
	hasLast bool

	lastEmittedAt time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock used for emission timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator over pool. A nil rng gets a time-seeded source.
func NewGenerator(pool *Pool, rng Rand, opts ...Option) *Generator {
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	g := &Generator{
		pool: pool,
		rng:  rng,
		now:  time.Now,
		used: make(map[emotion.Emotion]map[string]bool, emotion.Count),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Get returns a response for e. forceNew clears e's used set first, so
// the result may be any response in the pool. Unknown emotions use the
// neutral pool. Get never fails; if the pool cannot serve a response a
// generic sentence naming the emotion is returned instead.
func (g *Generator) Get(e emotion.Emotion, forceNew bool) string {
	key := resolve(e)

	if !g.hasLast || key != g.last || forceNew {
		g.used[key] = make(map[string]bool)
	}
	g.last, g.hasLast = key, true

	all := g.pool.lookup(key)
	if len(all) == 0 {
		return Fallback(e)
	}

	used := g.used[key]
	if used == nil {
		used = make(map[string]bool)
		g.used[key] = used
	}

	candidates := make([]string, 0, len(all))
	for _, r := range all {
		if !used[r] {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		used = make(map[string]bool)
		g.used[key] = used
		candidates = append(candidates, all...)
	}

	i := g.rng.IntN(len(candidates))
	if i < 0 || i >= len(candidates) {
		return Fallback(e)
	}
	choice := candidates[i]
	used[choice] = true
	g.lastEmittedAt = g.now()
	return choice
}

// Used returns how many responses of e's pool have been handed out since
// the last reset.
func (g *Generator) Used(e emotion.Emotion) int {
	return len(g.used[resolve(e)])
}

// LastEmittedAt returns when the most recent response was produced.
func (g *Generator) LastEmittedAt() time.Time {
	return g.lastEmittedAt
}

// Fallback is the generic response used when no pool entry is available.
func Fallback(e emotion.Emotion) string {
	label := string(e)
	if label == "" {
		label = string(emotion.Neutral)
	}
	return fmt.Sprintf("I notice you seem %s. How can I help you today?", label)
}
