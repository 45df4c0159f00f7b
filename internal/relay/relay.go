package relay

// Relay fans events out to the live connections of one recipient identity.
// Delivery is best-effort and at-most-once; emitting to a recipient with no
// subscribers is a no-op. The websocket hub is the production implementation.
type Relay interface {
	EmitToRoom(room, event string, payload interface{})
}

// Nop is a Relay that drops everything, for wiring without a socket server.
type Nop struct{}

func (Nop) EmitToRoom(room, event string, payload interface{}) {}
