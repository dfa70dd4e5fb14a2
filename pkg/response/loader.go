package response

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

//go:embed data/responses.yaml
var embeddedResponses embed.FS

// LoadEmbedded loads the built-in response pools.
func LoadEmbedded() (*Pool, error) {
	data, err := embeddedResponses.ReadFile("data/responses.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded responses: %w", err)
	}
	return Parse(data)
}

// MustLoadEmbedded is LoadEmbedded for callers that cannot continue without
// the defaults, such as tests.
func MustLoadEmbedded() *Pool {
	p, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return p
}

// LoadFromFile loads response pools from a YAML file on disk.
// The file maps each emotion label to a list of responses.
func LoadFromFile(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Load returns the pools from path, or the embedded defaults when path is empty.
func Load(path string) (*Pool, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFromFile(path)
}

// Parse decodes YAML pool data.
func Parse(data []byte) (*Pool, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}

	pools := make(map[emotion.Emotion][]string, len(raw))
	for label, list := range raw {
		e, err := emotion.Parse(label)
		if err != nil {
			return nil, err
		}
		if _, dup := pools[e]; dup {
			return nil, fmt.Errorf("%w: emotion %s listed twice (key %q)", ErrInvalidPool, e, label)
		}
		pools[e] = list
	}
	return NewPool(pools)
}
