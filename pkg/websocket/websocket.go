package websocket

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is the wire format for every frame exchanged with clients. Type
// doubles as the event name for server-emitted notifications.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
	From      string      `json:"from,omitempty"`
	Room      string      `json:"room,omitempty"`
}

// Hub owns all live connections and the room membership map. Recipients
// (stations and citizens) are rooms keyed by their own identity; clients join
// their room right after connecting.
type Hub struct {
	// all registered connections by connection ID
	connections map[string]*Connection
	// room name to connection IDs
	roomConnections map[string]map[string]bool
	// outbound event queue; the run loop serializes emits so delivery to one
	// room preserves emission order
	broadcast  chan *Message
	register   chan *Connection
	unregister chan *Connection

	connectionCount int64
	config          *Config
	mu              sync.RWMutex
	ctx             context.Context
	cancel          context.CancelFunc

	// shards reduce contention when broadcasting to every connection
	shardCount int
	shardConns []map[string]*Connection
	shardLocks []sync.RWMutex

	broadcastJobs chan broadcastJob
}

const (
	_broadcastAll = iota
)

type broadcastJob struct {
	kind  int
	shard int
	data  []byte
}

// NewHub creates a hub and starts its run loop.
func NewHub(config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	hub := &Hub{
		connections:     make(map[string]*Connection),
		roomConnections: make(map[string]map[string]bool),
		broadcast:       make(chan *Message, config.MessageQueueSize),
		register:        make(chan *Connection, 1000),
		unregister:      make(chan *Connection, 1000),
		config:          config,
		ctx:             ctx,
		cancel:          cancel,
	}

	if hub.config.ShardCount <= 0 {
		hub.config.ShardCount = 1
	}
	hub.shardCount = hub.config.ShardCount
	hub.shardConns = make([]map[string]*Connection, hub.shardCount)
	hub.shardLocks = make([]sync.RWMutex, hub.shardCount)
	for i := 0; i < hub.shardCount; i++ {
		hub.shardConns[i] = make(map[string]*Connection)
	}

	if hub.config.BroadcastWorkerCount <= 0 {
		hub.config.BroadcastWorkerCount = 1
	}
	hub.broadcastJobs = make(chan broadcastJob, hub.config.MessageQueueSize)
	for i := 0; i < hub.config.BroadcastWorkerCount; i++ {
		go hub.broadcastWorker()
	}

	go hub.run()
	return hub
}

// EmitToRoom queues an event for every connection currently in the room.
// Delivery is best-effort and at-most-once; a room with no subscribers is a
// silent no-op and nothing is retained for later joiners.
func (h *Hub) EmitToRoom(room, event string, payload interface{}) {
	h.broadcast <- &Message{Type: event, Data: payload, Room: room}
}

// Broadcast queues an event for every live connection.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.broadcast <- &Message{Type: event, Data: payload}
}

// run is the hub main loop. Register, unregister and emit all funnel through
// here, which is what serializes membership mutations against fan-out.
func (h *Hub) run() {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case conn := <-h.register:
			h.registerConnection(conn)
		case conn := <-h.unregister:
			h.unregisterConnection(conn)
		case message := <-h.broadcast:
			// serialize once per emit, not per subscriber
			if message.Timestamp == 0 {
				message.Timestamp = time.Now().Unix()
			}
			data, err := json.Marshal(message)
			if err != nil {
				logrus.Errorf("message marshal failed: %v", err)
				continue
			}
			if message.Room != "" {
				h.sendToRoom(message.Room, data)
			} else {
				h.enqueueBroadcastAll(data)
			}
		case <-ticker.C:
			h.checkHeartbeats()
		}
	}
}

// registerConnection adds a connection to the hub maps.
func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if atomic.LoadInt64(&h.connectionCount) >= h.config.MaxConnections {
		conn.Conn.Close()
		logrus.Warnf("connection limit reached: %d", h.config.MaxConnections)
		return
	}

	h.connections[conn.ID] = conn
	atomic.AddInt64(&h.connectionCount, 1)

	sh := h.shardIndex(conn.ID)
	h.shardLocks[sh].Lock()
	h.shardConns[sh][conn.ID] = conn
	h.shardLocks[sh].Unlock()

	for room := range conn.Rooms {
		if h.roomConnections[room] == nil {
			h.roomConnections[room] = make(map[string]bool)
		}
		h.roomConnections[room][conn.ID] = true
	}

	logrus.Infof("websocket connection registered: %s, user: %s, connections: %d",
		conn.ID, conn.UserID, atomic.LoadInt64(&h.connectionCount))
}

// unregisterConnection removes a connection from the hub maps.
func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.connections[conn.ID]; exists {
		delete(h.connections, conn.ID)
		atomic.AddInt64(&h.connectionCount, -1)

		sh := h.shardIndex(conn.ID)
		h.shardLocks[sh].Lock()
		delete(h.shardConns[sh], conn.ID)
		h.shardLocks[sh].Unlock()

		for room := range conn.Rooms {
			if h.roomConnections[room] != nil {
				delete(h.roomConnections[room], conn.ID)
				if len(h.roomConnections[room]) == 0 {
					delete(h.roomConnections, room)
				}
			}
		}

		close(conn.Send)
		logrus.Infof("websocket connection unregistered: %s, connections: %d",
			conn.ID, atomic.LoadInt64(&h.connectionCount))
	}
}

// joinRoom adds a connection to a room.
func (h *Hub) joinRoom(conn *Connection, room string) {
	h.mu.Lock()
	if h.roomConnections[room] == nil {
		h.roomConnections[room] = make(map[string]bool)
	}
	h.roomConnections[room][conn.ID] = true
	h.mu.Unlock()
}

// leaveRoom removes a connection from a room.
func (h *Hub) leaveRoom(conn *Connection, room string) {
	h.mu.Lock()
	if h.roomConnections[room] != nil {
		delete(h.roomConnections[room], conn.ID)
		if len(h.roomConnections[room]) == 0 {
			delete(h.roomConnections, room)
		}
	}
	h.mu.Unlock()
}

// sendToRoom delivers serialized data to every live connection in the room.
func (h *Hub) sendToRoom(room string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if connections, exists := h.roomConnections[room]; exists {
		for connID := range connections {
			if conn, ok := h.connections[connID]; ok && conn.IsAlive {
				h.trySend(conn, data, func() {
					logrus.Warnf("room %s connection %s send buffer full", room, connID)
				})
			}
		}
	}
}

// checkHeartbeats closes connections that missed the heartbeat window.
func (h *Hub) checkHeartbeats() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := time.Now()
	for _, conn := range h.connections {
		if now.Sub(conn.LastPing) > h.config.ConnectionTimeout {
			logrus.Warnf("connection %s heartbeat timeout, closing", conn.ID)
			conn.IsAlive = false
			if conn.Conn != nil {
				conn.Conn.Close()
			}
		}
	}
}

// GetConnectionCount returns the number of live connections.
func (h *Hub) GetConnectionCount() int64 {
	return atomic.LoadInt64(&h.connectionCount)
}

// GetRoomConnections returns the number of connections in a room.
func (h *Hub) GetRoomConnections(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if connections, exists := h.roomConnections[room]; exists {
		return len(connections)
	}
	return 0
}

// Close shuts the hub down and closes every connection.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	for _, conn := range h.connections {
		if conn.Conn != nil {
			conn.Conn.Close()
		}
	}
	h.mu.Unlock()

	logrus.Info("websocket hub closed")
}

// shardIndex maps a connection ID onto a shard.
func (h *Hub) shardIndex(id string) int {
	if h.shardCount <= 1 {
		return 0
	}
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(id))
	return int(hasher.Sum32() % uint32(h.shardCount))
}

// enqueueBroadcastAll fans a broadcast out across the shards.
func (h *Hub) enqueueBroadcastAll(data []byte) {
	for i := 0; i < h.shardCount; i++ {
		select {
		case h.broadcastJobs <- broadcastJob{kind: _broadcastAll, shard: i, data: data}:
		default:
			logrus.Warnf("broadcast job queue full, message dropped")
		}
	}
}

// broadcastWorker drains per-shard broadcast jobs.
func (h *Hub) broadcastWorker() {
	for job := range h.broadcastJobs {
		switch job.kind {
		case _broadcastAll:
			h.shardLocks[job.shard].RLock()
			for _, conn := range h.shardConns[job.shard] {
				if conn.IsAlive {
					h.trySend(conn, job.data, func() {
						logrus.Debugf("connection %s send buffer full, dropped per policy", conn.ID)
					})
				}
			}
			h.shardLocks[job.shard].RUnlock()
		}
	}
}

// trySend applies the backpressure policy for one connection.
func (h *Hub) trySend(conn *Connection, data []byte, onDrop func()) {
	if h.config.DropOnFull {
		select {
		case conn.Send <- data:
		default:
			onDrop()
			if h.config.CloseOnBackpressure && conn.Conn != nil {
				conn.Conn.Close()
			}
		}
		return
	}
	timeout := h.config.SendTimeout
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	select {
	case conn.Send <- data:
	case <-time.After(timeout):
		onDrop()
		if h.config.CloseOnBackpressure && conn.Conn != nil {
			conn.Conn.Close()
		}
	}
}
