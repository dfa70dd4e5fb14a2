package emotion

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_ClassifierOrder(t *testing.T) {
	want := []Emotion{Angry, Disgust, Fear, Happy, Neutral, Sad, Surprise}
	assert.Equal(t, want, All())

	// Callers must not be able to reorder the label table.
	all := All()
	all[0] = Happy
	assert.Equal(t, Angry, All()[0])
}

func TestFromIndex(t *testing.T) {
	for i, want := range All() {
		got, err := FromIndex(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := FromIndex(7)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FromIndex(-1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Emotion
		wantErr bool
	}{
		{in: "happy", want: Happy},
		{in: "  SAD ", want: Sad},
		{in: "Surprise", want: Surprise},
		{in: "contempt", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownEmotion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestArgMax(t *testing.T) {
	e, score, err := ArgMax([]float32{0.1, 0.05, 0.05, 0.6, 0.1, 0.05, 0.05})
	require.NoError(t, err)
	assert.Equal(t, Happy, e)
	assert.InDelta(t, 0.6, score, 1e-6)

	// Ties resolve to the lowest index.
	e, _, err = ArgMax([]float32{0.5, 0.5, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Angry, e)

	_, _, err = ArgMax([]float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrBadScores)
}

func TestColors(t *testing.T) {
	tests := []struct {
		e    Emotion
		hex  string
		rgba color.RGBA
	}{
		{Angry, "#FF5733", color.RGBA{0xFF, 0x57, 0x33, 0xFF}},
		{Happy, "#FFD700", color.RGBA{0xFF, 0xD7, 0x00, 0xFF}},
		{Sad, "#4682B4", color.RGBA{0x46, 0x82, 0xB4, 0xFF}},
		{Emotion("bored"), DefaultHex, color.RGBA{0xCC, 0xCC, 0xCC, 0xFF}},
	}

	for _, tc := range tests {
		t.Run(string(tc.e), func(t *testing.T) {
			assert.Equal(t, tc.hex, Hex(tc.e))
			assert.Equal(t, tc.rgba, Color(tc.e))
		})
	}

	for _, e := range All() {
		assert.NotEqual(t, DefaultHex, Hex(e), "%s should have its own color", e)
	}
}

func TestParseHex_Invalid(t *testing.T) {
	_, err := ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("zzzzzz")
	assert.Error(t, err)
}
