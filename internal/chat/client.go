package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024 // 64 KB; message bodies are text plus an image reference
)

// clientIDCounter assigns unique ids to sessions so fan-out and shutdown can
// iterate clients in a stable order.
var clientIDCounter atomic.Uint64

// Client is one live websocket session for an authenticated user. It relays
// inbound events to the chat service and pumps outbound frames from the hub.
type Client struct {
	id      uint64
	userID  string
	hub     *Hub
	service *Service
	conn    *websocket.Conn
	send    chan Frame

	// sendMu guards closed so enqueue and closeSend never race; the hub may
	// evict this session while its own readPump is producing a frame.
	sendMu sync.Mutex
	closed bool
}

// NewClient creates a session for an authenticated user on an upgraded
// websocket connection.
func NewClient(hub *Hub, service *Service, conn *websocket.Conn, userID string) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		userID:  userID,
		hub:     hub,
		service: service,
		conn:    conn,
		send:    make(chan Frame, 256),
	}
}

// UserID returns the authenticated user this session belongs to.
func (c *Client) UserID() string {
	return c.userID
}

// enqueue offers a frame to this session only, dropping it when the buffer is
// full rather than blocking the caller. Frames for a closed session are
// discarded.
func (c *Client) enqueue(frame Frame) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Warn().Uint64("client_id", c.id).Str("frame", frame.Type).Msg("dropping frame for slow chat client")
	}
}

// closeSend closes the send channel exactly once. Only the hub calls this,
// after removing the session from every channel.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads events from the websocket connection and dispatches them to
// the service. Events from one session are processed in arrival order; the
// service may block on storage without holding any hub lock.
func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := context.Background()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
			}
			break
		}

		event, err := DecodeEvent(raw)
		if err != nil {
			c.enqueue(Frame{Type: FrameError, Data: RejectedPayload{Reason: ReasonInvalid}})
			continue
		}

		switch {
		case event.Join != nil:
			c.service.HandleJoin(c, event.Join.Room)
		case event.Leave != nil:
			c.hub.Leave(c, event.Leave.Room)
		case event.Send != nil:
			c.service.HandleSend(ctx, c, *event.Send)
		}
	}
}

// writePump pumps frames from the hub to the websocket connection and keeps
// the connection alive with protocol-level pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(frame); err != nil {
				log.Error().Err(err).Uint64("client_id", c.id).Msg("failed to write frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the session.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
