package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodbot/internal/log"
)

type fakeConn struct {
	mu      sync.Mutex
	written []Message
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *fakeConn) WriteMessage(t int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch t {
	case websocket.TextMessage:
		c.written = append(c.written, NewJSONMessage(data))
	case websocket.BinaryMessage:
		c.written = append(c.written, NewBinaryMessage(data))
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.written...)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

func TestHub_BroadcastFanOut(t *testing.T) {
	h, _ := startHub(t)

	conns := []*fakeConn{newFakeConn(), newFakeConn()}
	for _, c := range conns {
		client := NewClient(h, c, NewJSONMessage([]byte(`{"type":"snapshot"}`)))
		require.NotNil(t, client)
		go client.Run()
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.BroadcastJSON(map[string]int{"seq": 1}))
	h.BroadcastBinary([]byte{0xFF, 0xD8})

	for _, c := range conns {
		require.Eventually(t, func() bool { return len(c.messages()) == 3 }, time.Second, time.Millisecond)
		msgs := c.messages()
		assert.Equal(t, `{"type":"snapshot"}`, string(msgs[0].Data), "initial message first")
		assert.Equal(t, `{"seq":1}`, string(msgs[1].Data))
		assert.Equal(t, BinaryMessage, msgs[2].Type)
	}

	conns[0].Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)

	// A client whose write pump never runs fills its buffer.
	slow := NewClient(h, newFakeConn())
	require.NotNil(t, slow)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < sendBuffer+1; i++ {
		h.BroadcastBinary([]byte{byte(i)})
		time.Sleep(time.Millisecond)
	}
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
}

func TestHub_StoppedHubRejectsClients(t *testing.T) {
	h, cancel := startHub(t)
	cancel()
	<-h.Done()

	assert.Nil(t, NewClient(h, newFakeConn()))
	h.BroadcastBinary([]byte{1}) // must not block
}
