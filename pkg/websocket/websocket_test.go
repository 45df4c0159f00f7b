package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnection(hub *Hub, id, userID string) *Connection {
	return &Connection{
		ID:      id,
		UserID:  userID,
		Send:    make(chan []byte, 16),
		Hub:     hub,
		IsAlive: true,
		LastPing: time.Now(),
		Rooms:   make(map[string]bool),
	}
}

func receiveMessage(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)
	assert.NotNil(t, hub)
	assert.Equal(t, int64(DefaultMaxConnections), hub.config.MaxConnections)
	assert.Equal(t, 30*time.Second, hub.config.HeartbeatInterval)

	hub.Close()
}

func TestHubConnectionManagement(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := newTestConnection(hub, "test_conn_1", "user_1")

	hub.register <- conn
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int64(1), hub.GetConnectionCount())

	hub.unregister <- conn
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int64(0), hub.GetConnectionCount())
}

func TestHubRoomManagement(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn1 := newTestConnection(hub, "test_conn_1", "user_1")
	conn2 := newTestConnection(hub, "test_conn_2", "user_2")

	hub.register <- conn1
	hub.register <- conn2
	time.Sleep(100 * time.Millisecond)

	conn1.JoinRoom("station-9")
	conn2.JoinRoom("station-9")
	assert.Equal(t, 2, hub.GetRoomConnections("station-9"))

	conn1.LeaveRoom("station-9")
	assert.Equal(t, 1, hub.GetRoomConnections("station-9"))

	hub.unregister <- conn1
	hub.unregister <- conn2
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, hub.GetRoomConnections("station-9"))
}

func TestEmitToRoomDeliversOnlyToMembers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	member := newTestConnection(hub, "conn_member", "user_1")
	other := newTestConnection(hub, "conn_other", "user_2")

	hub.register <- member
	hub.register <- other
	time.Sleep(100 * time.Millisecond)

	member.JoinRoom("station-1")
	other.JoinRoom("station-2")

	hub.EmitToRoom("station-1", EventNewReport, map[string]interface{}{"reportId": "r-1"})

	msg := receiveMessage(t, member)
	assert.Equal(t, EventNewReport, msg.Type)
	assert.Equal(t, "station-1", msg.Room)

	select {
	case <-other.Send:
		t.Fatal("message delivered to a connection outside the room")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestEmitToRoomWithoutSubscribersIsNoOp(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	// nothing joined the room; emit must not block or panic
	hub.EmitToRoom("station-ghost", EventNewReport, "payload")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, hub.GetRoomConnections("station-ghost"))
}

func TestEmitToRoomPreservesOrder(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := newTestConnection(hub, "conn_1", "user_1")
	hub.register <- conn
	time.Sleep(100 * time.Millisecond)

	conn.JoinRoom("citizen-7")

	for i := 0; i < 5; i++ {
		hub.EmitToRoom("citizen-7", EventHelpOnWay, float64(i))
	}

	for i := 0; i < 5; i++ {
		msg := receiveMessage(t, conn)
		assert.Equal(t, float64(i), msg.Data)
	}
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn1 := newTestConnection(hub, "conn_1", "user_1")
	conn2 := newTestConnection(hub, "conn_2", "user_2")

	hub.register <- conn1
	hub.register <- conn2
	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(EventNewAlert, "ping-all")

	msg1 := receiveMessage(t, conn1)
	msg2 := receiveMessage(t, conn2)
	assert.Equal(t, EventNewAlert, msg1.Type)
	assert.Equal(t, EventNewAlert, msg2.Type)
}
