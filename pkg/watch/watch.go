// Package watch follows a running moodbot over /ws/updates and prints
// each state change to a terminal.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-moodbot/pkg/term"
	"github.com/teslashibe/go-moodbot/pkg/web"
)

const (
	handshakeTimeout = 10 * time.Second
	minBackoff       = 500 * time.Millisecond
	maxBackoff       = 10 * time.Second
)

// Client reads update messages from a moodbot server.
type Client struct {
	url     string
	printer *term.Printer
	logger  *slog.Logger
	dialer  websocket.Dialer

	// Redial delays; the delay doubles after each failed dial and starts
	// over once a connection has been made.
	minBackoff time.Duration
	maxBackoff time.Duration

	// Reconnect controls whether Run redials after the connection drops.
	Reconnect bool
}

// New creates a client for the updates endpoint at url,
// e.g. ws://localhost:8080/ws/updates.
func New(url string, printer *term.Printer, logger *slog.Logger) *Client {
	return &Client{
		url:       url,
		printer:   printer,
		logger:    logger,
		dialer:     websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		Reconnect:  true,
	}
}

// Run follows the server until ctx is cancelled. Without Reconnect it
// returns the first connection error.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.minBackoff
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if !c.Reconnect {
			return err
		}
		if connected {
			backoff = c.minBackoff
		}
		c.logger.Warn("connection lost, retrying", "url", c.url, "error", err, "in", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// session reads from one connection until it drops. connected reports
// whether the dial succeeded.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial %s: %w (status %d)", c.url, err, resp.StatusCode)
		}
		return false, fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.logger.Info("connected", "url", c.url)

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer func() {
		stop()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, errors.New("server closed the connection")
			}
			return true, fmt.Errorf("read: %w", err)
		}
		if err := c.handle(data); err != nil {
			c.logger.Warn("bad update message", "error", err)
		}
	}
}

// handle prints a message when it carries visible state.
func (c *Client) handle(data []byte) error {
	var msg web.UpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	switch {
	case msg.Type == "notice":
		c.printer.PrintNotice(msg.Notice)
	case msg.State != nil:
		c.printer.PrintSnapshot(msg.State)
	}
	return nil
}
