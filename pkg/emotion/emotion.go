// Package emotion defines the closed set of facial emotions the classifier
// can produce and the fixed display color assigned to each.
package emotion

import (
	"fmt"
	"image/color"
	"strings"
)

// Emotion is one of the seven classification outcomes.
type Emotion string

const (
	Angry    Emotion = "angry"
	Disgust  Emotion = "disgust"
	Fear     Emotion = "fear"
	Happy    Emotion = "happy"
	Neutral  Emotion = "neutral"
	Sad      Emotion = "sad"
	Surprise Emotion = "surprise"
)

// Count is the size of the classifier output vector.
const Count = 7

// labels is in classifier output order. Index i of the probability vector
// is the score for labels[i].
var labels = [Count]Emotion{Angry, Disgust, Fear, Happy, Neutral, Sad, Surprise}

// All returns every emotion in classifier output order.
func All() []Emotion {
	out := make([]Emotion, Count)
	copy(out, labels[:])
	return out
}

// FromIndex maps a classifier output index to its emotion.
func FromIndex(i int) (Emotion, error) {
	if i < 0 || i >= Count {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return labels[i], nil
}

// Parse validates a label. Matching is case-insensitive.
func Parse(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEmotion, s)
	}
	return e, nil
}

// Valid reports whether e is one of the seven known emotions.
func (e Emotion) Valid() bool {
	for _, l := range labels {
		if l == e {
			return true
		}
	}
	return false
}

// String returns the label.
func (e Emotion) String() string {
	return string(e)
}

// ArgMax returns the emotion with the highest score. The vector must have
// exactly Count entries; ties resolve to the lowest index.
func ArgMax(scores []float32) (Emotion, float32, error) {
	if len(scores) != Count {
		return "", 0, fmt.Errorf("%w: got %d scores, want %d", ErrBadScores, len(scores), Count)
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return labels[best], scores[best], nil
}

// Display colors. Unknown labels fall back to DefaultHex.
var hexColors = map[Emotion]string{
	Angry:    "#FF5733",
	Disgust:  "#6E8B3D",
	Fear:     "#800080",
	Happy:    "#FFD700",
	Neutral:  "#A9A9A9",
	Sad:      "#4682B4",
	Surprise: "#FF69B4",
}

// DefaultHex is the gray used for unknown emotions.
const DefaultHex = "#CCCCCC"

// Hex returns the display color for e as "#RRGGBB".
func Hex(e Emotion) string {
	if h, ok := hexColors[e]; ok {
		return h
	}
	return DefaultHex
}

// Color returns the display color for e.
func Color(e Emotion) color.RGBA {
	c, err := ParseHex(Hex(e))
	if err != nil {
		return color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	}
	return c
}

// ParseHex parses "#RRGGBB" (leading '#' optional).
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("emotion: bad hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("emotion: bad hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
