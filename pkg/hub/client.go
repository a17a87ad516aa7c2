package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-arenabot/internal/log"
)

// Connection timing for dashboard viewers.
const (
	writeTimeout = 5 * time.Second
	idleTimeout  = 45 * time.Second
	pingEvery    = idleTimeout * 2 / 3

	// viewers only send pongs and close frames
	readLimit = 1024

	queueSize = 64
)

// Client is one dashboard viewer attached to a Hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

func (c *Client) queue() chan Message { return c.send }

// NewClient attaches conn to hub. initial messages are delivered before any
// broadcast, so a viewer starts from the latest state instead of a blank page.
func NewClient(hub *Hub, conn *websocket.Conn, initial ...Message) *Client {
	c := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan Message, queueSize),
	}
	for i, msg := range initial {
		if i == queueSize {
			break
		}
		c.send <- msg
	}
	select {
	case hub.register <- c:
	case <-hub.stop:
		close(c.send)
	}
	return c
}

// ID identifies the viewer in logs.
func (c *Client) ID() string { return c.id }

// Run serves the viewer until it disconnects or the hub drops it.
func (c *Client) Run() {
	log.Debug("viewer attached", "hub", c.hub.name, "viewer", c.id)
	go c.writeLoop()
	c.readLoop()
	log.Debug("viewer detached", "hub", c.hub.name, "viewer", c.id)
}

// readLoop discards inbound frames; reading is what surfaces pongs and
// disconnects.
func (c *Client) readLoop() {
	defer c.detach()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) detach() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.stop:
	}
	c.conn.Close()
}

// writeLoop is the only writer on conn.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "dashboard closed"))
				return
			}
			if err := c.write(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(kind, data)
}
