package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Connection is one live client socket and its room memberships.
type Connection struct {
	ID       string
	UserID   string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
	LastPing time.Time
	IsAlive  bool
	mu       sync.RWMutex
	Rooms    map[string]bool
}

// readPump reads client frames until the socket closes.
func (c *Connection) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(int64(c.Hub.config.MaxMessageSize))
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.LastPing = time.Now()
		c.mu.Unlock()
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ConnectionTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("websocket read error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump drains the send queue onto the socket, preserving queue order.
func (c *Connection) writePump() {
	interval := c.Hub.config.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(time.Duration(float64(interval) * 0.9))
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// flush anything else already queued
			n := len(c.Send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one client frame.
func (c *Connection) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		logrus.Errorf("message parse failed: %v", err)
		return
	}

	msg.From = c.UserID

	switch msg.Type {
	case MessageTypePing:
		c.handlePing()
	case MessageTypeJoinRoom:
		c.handleJoinRoom(msg)
	case MessageTypeLeaveRoom:
		c.handleLeaveRoom(msg)
	case MessageTypeNewReportCreated:
		// legacy client hook: rebroadcast freshly created reports to every
		// dashboard as a general alert
		c.Hub.Broadcast(EventNewAlert, msg.Data)
	default:
		logrus.Warnf("unknown message type: %s", msg.Type)
	}
}

// handlePing refreshes liveness and answers with a pong.
func (c *Connection) handlePing() {
	c.mu.Lock()
	c.LastPing = time.Now()
	c.mu.Unlock()

	c.reply(Message{Type: MessageTypePong, Timestamp: time.Now().Unix()})
}

// handleJoinRoom subscribes the connection to a recipient room.
func (c *Connection) handleJoinRoom(msg Message) {
	room, ok := msg.Data.(string)
	if !ok || room == "" {
		logrus.Warnf("invalid room name: %v", msg.Data)
		return
	}

	c.JoinRoom(room)
	c.reply(Message{Type: MessageTypeRoomJoined, Data: room, Timestamp: time.Now().Unix()})
	logrus.Infof("user %s joined room %s", c.UserID, room)
}

// handleLeaveRoom unsubscribes the connection from a recipient room.
func (c *Connection) handleLeaveRoom(msg Message) {
	room, ok := msg.Data.(string)
	if !ok || room == "" {
		logrus.Warnf("invalid room name: %v", msg.Data)
		return
	}

	c.LeaveRoom(room)
	c.reply(Message{Type: MessageTypeRoomLeft, Data: room, Timestamp: time.Now().Unix()})
	logrus.Infof("user %s left room %s", c.UserID, room)
}

// JoinRoom adds the connection to a room.
func (c *Connection) JoinRoom(room string) {
	c.mu.Lock()
	c.Rooms[room] = true
	c.mu.Unlock()

	c.Hub.joinRoom(c, room)
}

// LeaveRoom removes the connection from a room.
func (c *Connection) LeaveRoom(room string) {
	c.mu.Lock()
	delete(c.Rooms, room)
	c.mu.Unlock()

	c.Hub.leaveRoom(c, room)
}

func (c *Connection) reply(msg Message) {
	data, _ := json.Marshal(msg)
	select {
	case c.Send <- data:
	default:
		logrus.Warnf("connection %s send buffer full", c.ID)
	}
}
