package vision

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodbot/pkg/emotion"
)

// Classifier maps a grayscale face crop to an emotion using an ONNX
// network with a single 1x1xNxN input and a 7-way probability output.
type Classifier struct {
	net  gocv.Net
	size image.Point
	mu   sync.Mutex
}

// NewClassifier loads the model at path. size is the square input edge.
func NewClassifier(path string, size int) (*Classifier, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}

	net := gocv.ReadNetFromONNX(path)
	if net.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, path)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	if size <= 0 {
		size = 48
	}
	return &Classifier{net: net, size: image.Pt(size, size)}, nil
}

// Classify returns the most likely emotion for face, with its probability.
// face must be single-channel.
func (c *Classifier) Classify(face gocv.Mat) (emotion.Emotion, float32, error) {
	scores, err := c.Scores(face)
	if err != nil {
		return "", 0, err
	}
	e, p, err := emotion.ArgMax(scores)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return e, p, nil
}

// Scores returns the raw output vector in classifier order.
func (c *Classifier) Scores(face gocv.Mat) ([]float32, error) {
	if face.Empty() {
		return nil, fmt.Errorf("%w: empty face crop", ErrInference)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(face, &resized, c.size, 0, 0, gocv.InterpolationArea)

	// Pixels scaled to 0-1, no mean subtraction, no channel swap.
	blob := gocv.BlobFromImage(resized, 1.0/255.0, c.size, gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	output := c.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(data) != emotion.Count {
		return nil, fmt.Errorf("%w: got %d outputs, want %d", ErrInference, len(data), emotion.Count)
	}
	return append([]float32(nil), data...), nil
}

// Close releases the network.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}
