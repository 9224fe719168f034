package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatrelay/backend/internal/config"
	"chatrelay/backend/internal/models"
)

// WSClient implements Subscriber over a gorilla WebSocket connection.
// The read pump feeds the connection handler; the write pump drains the
// bounded send buffer out to the client.
type WSClient struct {
	UserID string
	Conn   *websocket.Conn

	// roomID is written once by the connection handler on join and read
	// afterwards; the handler serializes both under its own lock.
	roomID string

	handler *ConnHandler

	send      chan models.Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewWSClient wraps an upgraded connection. AttachHandler must be called
// before Run.
func NewWSClient(conn *websocket.Conn, userID string) *WSClient {
	return &WSClient{
		UserID: userID,
		Conn:   conn,
		send:   make(chan models.Message, config.SendBufferSize),
		done:   make(chan struct{}),
	}
}

// AttachHandler binds the connection handler that will receive this
// client's inbound messages.
func (c *WSClient) AttachHandler(h *ConnHandler) {
	c.handler = h
}

func (c *WSClient) GetUserID() string   { return c.UserID }
func (c *WSClient) GetRoomID() string   { return c.roomID }
func (c *WSClient) SetRoomID(id string) { c.roomID = id }

// TrySend pushes a message onto the send buffer without blocking. A full
// buffer or a shut-down client drops the message.
func (c *WSClient) TrySend(msg models.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Run starts the read and write pumps.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close signals both pumps to stop. The send channel itself is never
// closed, so a router holding a stale registry snapshot can still call
// TrySend safely.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *WSClient) readPump() {
	defer func() {
		c.handler.Shutdown()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message from client %s: %v", c.UserID, err)
			}
			break
		}

		var msg models.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error decoding JSON from client %s: %v", c.UserID, err)
			continue
		}

		c.handler.HandleInbound(msg)
	}
}

// writePump reads messages from the send buffer and writes them to the
// WebSocket, coalescing whatever is already buffered into one frame.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))

			dataToWrite, err := json.Marshal(message)
			if err != nil {
				log.Printf("Error encoding JSON for client %s: %v", c.UserID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(dataToWrite)
			w.Write([]byte{'\n'})

			// Drain whatever else is already buffered into this frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				nextMsg := <-c.send
				extraData, _ := json.Marshal(nextMsg)
				w.Write(extraData)
				w.Write([]byte{'\n'})
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
