package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"go-file-manager/internal/logger"
	"go-file-manager/internal/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer; the websocket
	// endpoint itself accepts any origin that got this far.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber. Outbound messages go through a
// buffered channel; overflow drops the message for that client only.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// ServeWS upgrades the connection and joins the client to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(logger.CategorySystem, "websocket upgrade failed", map[string]any{
			"error": err.Error(),
		}, nil)
		return
	}

	identity := middleware.IdentityFromRequest(r)
	h.log.Info(logger.CategorySystem, "websocket client connected", nil, &identity)

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	h.register(client)
	go client.writeLoop()
	go client.readLoop()
}

func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		// Buffer full: the client is too slow, skip this event.
	}
}

func (c *Client) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// readLoop drains the connection so pings and close frames are handled;
// inbound payloads are ignored.
func (c *Client) readLoop() {
	defer func() {
		c.hub.remove(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
