package ui

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// DefaultHistorySize is the number of history lines kept.
const DefaultHistorySize = 10

// HistoryPlaceholder is shown until the first emotion is recorded.
const HistoryPlaceholder = "Waiting for emotions..."

// History is a bounded, newest-first list of emotion changes.
type History struct {
	entries []string
	max     int
}

// NewHistory creates an empty history holding at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// FormatEntry renders a history line as "<emotion> - HH:MM:SS".
func FormatEntry(e emotion.Emotion, at time.Time) string {
	return fmt.Sprintf("%s - %s", e, at.Format("15:04:05"))
}

// Add records e at the front and drops the oldest entry past the limit.
func (h *History) Add(e emotion.Emotion, at time.Time) {
	h.entries = append([]string{FormatEntry(e, at)}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

// Entries returns a copy of the recorded lines, newest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Lines is Entries with the placeholder shown while empty.
func (h *History) Lines() []string {
	if len(h.entries) == 0 {
		return []string{HistoryPlaceholder}
	}
	return h.Entries()
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}
