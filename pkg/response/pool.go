// Package response picks emotion-appropriate canned responses without
// repeating one until every response for that emotion has been shown.
//
// Pools are loaded once at startup, either from the embedded defaults or
// from a YAML file with the same layout, and never change afterwards.
package response

import (
	"fmt"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// Pool is an immutable set of responses per emotion.
type Pool struct {
	entries map[emotion.Emotion][]string
}

// NewPool validates raw and builds a Pool from a private copy of it.
// Every emotion must have at least one response and responses within an
// emotion must be distinct.
func NewPool(raw map[emotion.Emotion][]string) (*Pool, error) {
	entries := make(map[emotion.Emotion][]string, emotion.Count)
	for _, e := range emotion.All() {
		list, ok := raw[e]
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPool, e)
		}
		seen := make(map[string]bool, len(list))
		for _, r := range list {
			if r == "" {
				return nil, fmt.Errorf("%w: blank response for %s", ErrInvalidPool, e)
			}
			if seen[r] {
				return nil, fmt.Errorf("%w: duplicate response for %s: %q", ErrInvalidPool, e, r)
			}
			seen[r] = true
		}
		entries[e] = append([]string(nil), list...)
	}
	for e := range raw {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: %q", emotion.ErrUnknownEmotion, e)
		}
	}
	return &Pool{entries: entries}, nil
}

// Responses returns a copy of the responses for e. Unknown emotions get
// the neutral pool.
func (p *Pool) Responses(e emotion.Emotion) []string {
	return append([]string(nil), p.lookup(e)...)
}

// Size returns the number of responses available for e.
func (p *Pool) Size(e emotion.Emotion) int {
	return len(p.lookup(e))
}

// Contains reports whether r is one of e's responses.
func (p *Pool) Contains(e emotion.Emotion, r string) bool {
	for _, s := range p.lookup(e) {
		if s == r {
			return true
		}
	}
	return false
}

// resolve maps unknown emotions onto neutral.
func resolve(e emotion.Emotion) emotion.Emotion {
	if e.Valid() {
		return e
	}
	return emotion.Neutral
}

func (p *Pool) lookup(e emotion.Emotion) []string {
	if p == nil {
		return nil
	}
	return p.entries[resolve(e)]
}
