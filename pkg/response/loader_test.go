package response

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

func TestLoadEmbedded(t *testing.T) {
	pool, err := LoadEmbedded()
	require.NoError(t, err)

	for _, e := range emotion.All() {
		assert.Equal(t, 6, pool.Size(e), "%s pool size", e)
	}
}

func TestPool_ResponsesIsACopy(t *testing.T) {
	pool := MustLoadEmbedded()
	list := pool.Responses(emotion.Happy)
	list[0] = "mutated"
	assert.NotEqual(t, "mutated", pool.Responses(emotion.Happy)[0])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{
			name: "missing emotion",
			yaml: "happy: [a]\n",
			err:  ErrEmptyPool,
		},
		{
			name: "unknown label",
			yaml: "happy: [a]\nbored: [b]\n",
			err:  emotion.ErrUnknownEmotion,
		},
		{
			name: "same emotion in two cases",
			yaml: "angry: [a]\nAngry: [b]\n",
			err:  ErrInvalidPool,
		},
		{
			name: "not yaml",
			yaml: "::::",
			err:  ErrInvalidPool,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestNewPool_RejectsDuplicates(t *testing.T) {
	raw := map[emotion.Emotion][]string{}
	for _, e := range emotion.All() {
		raw[e] = []string{"one", "two"}
	}
	raw[emotion.Sad] = []string{"same", "same"}

	_, err := NewPool(raw)
	assert.ErrorIs(t, err, ErrInvalidPool)
}

func TestLoadFromFile(t *testing.T) {
	var body string
	for _, e := range emotion.All() {
		body += string(e) + ":\n  - \"" + string(e) + " one\"\n  - \"" + string(e) + " two\"\n"
	}
	path := filepath.Join(t.TempDir(), "responses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	pool, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"fear one", "fear two"}, pool.Responses(emotion.Fear))

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
