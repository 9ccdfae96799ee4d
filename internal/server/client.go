package server

import (
	"errors"
	"net"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Outbound messages queued per client before sends start failing.
	outgoingBuffer = 64
)

// ErrSlowClient is returned by Send when the client's outgoing buffer is
// full. The message is dropped; a stalled peer must not stall the core.
var ErrSlowClient = errors.New("client outgoing buffer full")

// Client adapts one TCP connection to the chat.Connection capability.
// Sends are queued on a buffered channel drained by WritePump, so callers
// holding directory snapshots never block on the socket.
type Client struct {
	id       string
	conn     net.Conn
	outgoing chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn net.Conn) (*Client, error) {
	id, err := gonanoid.New(8)
	if err != nil {
		return nil, err
	}
	return &Client{
		id:       id,
		conn:     conn,
		outgoing: make(chan []byte, outgoingBuffer),
		done:     make(chan struct{}),
	}, nil
}

func (c *Client) ID() string { return c.id }

// Send queues one line for delivery. It never blocks: a full buffer or a
// closed connection is reported as an error and the line is dropped.
func (c *Client) Send(p []byte) error {
	select {
	case <-c.done:
		return net.ErrClosed
	default:
	}
	select {
	case c.outgoing <- p:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close shuts the connection down. Safe to call from any goroutine, any
// number of times.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// WritePump drains the outgoing queue onto the socket, newline-terminating
// each message. It owns all writes to the connection and exits when the
// client is closed or a write fails.
func (c *Client) WritePump() {
	defer c.Close()

	for {
		select {
		case msg := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if _, err := c.conn.Write(append(msg, '\n')); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
