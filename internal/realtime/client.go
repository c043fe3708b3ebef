package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client-sent and server-sent event names.
const (
	EventJoin   = "join"
	EventJoined = "joined"
	EventError  = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 32
)

// JoinRequest is the message a client sends to subscribe to a user's events.
// A missing UserID joins the authenticated user.
type JoinRequest struct {
	Event  string  `json:"event"`
	UserID *uint64 `json:"user_id"`
}

// Client is one websocket connection. Reads happen on the goroutine that
// calls Serve, writes on a dedicated write pump.
type Client struct {
	ID     uuid.UUID
	userID uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once

	// guarded by hub.mu
	joined map[uint64]struct{}
}

// NewClient wraps conn for the authenticated user userID.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint64) *Client {
	return &Client{
		ID:     uuid.New(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		joined: make(map[uint64]struct{}),
	}
}

// Serve runs the connection until the peer disconnects or the hub closes.
func (c *Client) Serve() {
	if err := c.hub.Register(c); err != nil {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		c.conn.Close()
		return
	}

	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[hub] client %s read error: %v", c.ID, err)
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply(EventError, map[string]string{"message": "malformed message"})
		return
	}

	switch req.Event {
	case EventJoin:
		if req.UserID != nil && *req.UserID != c.userID {
			c.reply(EventError, map[string]string{"message": "cannot join another user's channel"})
			return
		}
		c.hub.Join(c, c.userID)
		c.reply(EventJoined, map[string]uint64{"user_id": c.userID})
	default:
		c.reply(EventError, map[string]string{"message": "unknown event"})
	}
}

func (c *Client) reply(event string, payload interface{}) {
	message, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return
	}
	c.enqueue(message)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// enqueue never blocks: a closed client or a full buffer drops the message.
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
