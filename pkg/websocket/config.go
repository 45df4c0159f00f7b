package websocket

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

// Config tunes the hub and its connections.
type Config struct {
	MaxConnections       int64
	HeartbeatInterval    time.Duration
	ConnectionTimeout    time.Duration
	MessageBufferSize    int
	ReadBufferSize       int
	WriteBufferSize      int
	MaxMessageSize       int
	EnableCompression    bool
	MessageQueueSize     int
	ShardCount           int
	BroadcastWorkerCount int
	// drop queued frames instead of blocking when a client falls behind
	DropOnFull          bool
	CompressionLevel    int
	CloseOnBackpressure bool
	SendTimeout         time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxConnections:       DefaultMaxConnections,
		HeartbeatInterval:    DefaultHeartbeatInterval * time.Second,
		ConnectionTimeout:    DefaultConnectionTimeout * time.Second,
		MessageBufferSize:    DefaultMessageBufferSize,
		ReadBufferSize:       DefaultReadBufferSize,
		WriteBufferSize:      DefaultWriteBufferSize,
		MaxMessageSize:       DefaultMaxMessageSize,
		EnableCompression:    true,
		MessageQueueSize:     DefaultMessageQueueSize,
		ShardCount:           16,
		BroadcastWorkerCount: 32,
		DropOnFull:           true,
		CompressionLevel:     -2,
		CloseOnBackpressure:  false,
		SendTimeout:          50 * time.Millisecond,
	}
}

// ConfigFromEnv overlays environment overrides on the defaults.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv(EnvWebSocketMaxConnections); v != "" {
		cfg.MaxConnections = cast.ToInt64(v)
	}
	if v := os.Getenv(EnvWebSocketHeartbeatInterval); v != "" {
		cfg.HeartbeatInterval = time.Duration(cast.ToInt64(v)) * time.Second
	}
	if v := os.Getenv(EnvWebSocketConnectionTimeout); v != "" {
		cfg.ConnectionTimeout = time.Duration(cast.ToInt64(v)) * time.Second
	}
	if v := os.Getenv(EnvWebSocketMessageBufferSize); v != "" {
		cfg.MessageBufferSize = cast.ToInt(v)
	}
	if v := os.Getenv(EnvWebSocketMessageQueueSize); v != "" {
		cfg.MessageQueueSize = cast.ToInt(v)
	}
	if v := os.Getenv(EnvWebSocketEnableCompression); v != "" {
		cfg.EnableCompression = cast.ToBool(v)
	}
	if v := os.Getenv(EnvWebSocketShardCount); v != "" {
		cfg.ShardCount = cast.ToInt(v)
	}
	if v := os.Getenv(EnvWebSocketBroadcastWorkers); v != "" {
		cfg.BroadcastWorkerCount = cast.ToInt(v)
	}
	if v := os.Getenv(EnvWebSocketDropOnFull); v != "" {
		cfg.DropOnFull = cast.ToBool(v)
	}
	if v := os.Getenv(EnvWebSocketMaxMessageSize); v != "" {
		cfg.MaxMessageSize = cast.ToInt(v)
	}

	return cfg
}
