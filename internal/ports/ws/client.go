package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// client is one websocket connection bound to a room. playerID starts equal
// to the connection id and is rebound on a validated rejoin.
type client struct {
	connID   string
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	session  *RoomSession
}

func newClient(connID string, conn *websocket.Conn, session *RoomSession) *client {
	return &client{
		connID:   connID,
		playerID: connID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		session:  session,
	}
}

// enqueue hands a payload to the write pump, dropping it if the connection
// cannot keep up. Only the session goroutine calls this.
func (c *client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

// closeSend stops the write pump. Only the session goroutine calls this.
func (c *client) closeSend() {
	close(c.send)
}

// readPump forwards inbound frames to the room inbox. One per connection.
func (c *client) readPump() {
	defer func() {
		c.session.inbox <- roomEvent{kind: eventConnClosed, connID: c.connID}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.session.inbox <- roomEvent{kind: eventInbound, connID: c.connID, data: data}
	}
}

// writePump drains the send channel onto the socket. One per connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
