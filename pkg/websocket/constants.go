package websocket

// Client-to-server message types.
const (
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
	MessageTypeJoinRoom         = "join_room"
	MessageTypeLeaveRoom        = "leave_room"
	MessageTypeRoomJoined       = "room_joined"
	MessageTypeRoomLeft         = "room_left"
	MessageTypeNewReportCreated = "new_report_created"
)

// Server-emitted event names.
const (
	EventNewReport    = "new_report"
	EventHelpOnWay    = "help_on_way"
	EventViewLocation = "view_location"
	EventNewAlert     = "new_alert"
)

// Default configuration values.
const (
	DefaultMaxConnections    = 100000
	DefaultHeartbeatInterval = 30
	DefaultConnectionTimeout = 60
	DefaultMessageBufferSize = 256
	DefaultMessageQueueSize  = 1000
	DefaultReadBufferSize    = 1024
	DefaultWriteBufferSize   = 1024
	DefaultMaxMessageSize    = 4096
)

// Environment configuration keys.
const (
	EnvWebSocketMaxConnections    = "WEBSOCKET_MAX_CONNECTIONS"
	EnvWebSocketHeartbeatInterval = "WEBSOCKET_HEARTBEAT_INTERVAL"
	EnvWebSocketConnectionTimeout = "WEBSOCKET_CONNECTION_TIMEOUT"
	EnvWebSocketMessageBufferSize = "WEBSOCKET_MESSAGE_BUFFER_SIZE"
	EnvWebSocketMessageQueueSize  = "WEBSOCKET_MESSAGE_QUEUE_SIZE"
	EnvWebSocketEnableCompression = "WEBSOCKET_ENABLE_COMPRESSION"
	EnvWebSocketShardCount        = "WEBSOCKET_SHARD_COUNT"
	EnvWebSocketBroadcastWorkers  = "WEBSOCKET_BROADCAST_WORKERS"
	EnvWebSocketDropOnFull        = "WEBSOCKET_DROP_ON_FULL"
	EnvWebSocketMaxMessageSize    = "WEBSOCKET_MAX_MESSAGE_SIZE"
)
