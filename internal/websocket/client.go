package websocket

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"gorc/internal/directory"
	"gorc/internal/dispatcher"
	"gorc/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 2048

	outgoingBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ErrSlowClient is returned by Send when the outgoing buffer is full.
var ErrSlowClient = errors.New("client outgoing buffer full")

// Client adapts one websocket session to the chat.Connection capability.
// To the core a websocket user is indistinguishable from a TCP one.
type Client struct {
	id       string
	conn     *websocket.Conn
	outgoing chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (c *Client) ID() string { return c.id }

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

func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

// writePump pumps queued messages onto the websocket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Serve upgrades the request and runs the session until the peer goes
// away. The same cleanup contract as the TCP path applies: Unregister runs
// exactly once when the read loop exits, however it exits.
func Serve(w http.ResponseWriter, r *http.Request, name string, dir *directory.Directory, disp *dispatcher.Dispatcher, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	id, err := gonanoid.New(8)
	if err != nil {
		conn.Close()
		return
	}
	client := &Client{
		id:       id,
		conn:     conn,
		outgoing: make(chan []byte, outgoingBuffer),
		done:     make(chan struct{}),
	}
	go client.writePump()

	if _, err := dir.Register(name, client); err != nil {
		_ = client.Send([]byte(name + " is already in this instance!"))
		client.Close()
		return
	}
	log.Printf("%s connected over websocket (conn %s)", name, id)

	defer func() {
		dir.Unregister(name)
		client.Close()
		log.Printf("%s disconnected", name)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read from %s: %v", name, err)
			}
			return
		}
		// A frame may carry several newline-separated lines.
		for _, line := range strings.Split(string(msg), "\n") {
			disp.Dispatch(name, line)
		}
	}
}
