package internal

import (
	"fmt"
	"strings"
	"time"

	"vitatrack/infrastructure/ws"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=3000"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/accounts"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MaxMessageSize       int           `env:"MAX_MESSAGE_SIZE,default=65536"`
	WriteWait            time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	RoomSweepInterval    time.Duration `env:"ROOM_SWEEP_INTERVAL,default=1m"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	AuthSecret           string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects combinations the transport cannot work with.
func (c Config) Validate() error {
	if c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("MAX_MESSAGE_SIZE must be positive, got %d", c.MaxMessageSize)
	}
	if c.PongWait <= 0 || c.WriteWait <= 0 {
		return fmt.Errorf("PONG_WAIT and WRITE_WAIT must be positive")
	}
	if c.RoomSweepInterval <= 0 || c.HeartbeatInterval <= 0 {
		return fmt.Errorf("ROOM_SWEEP_INTERVAL and HEARTBEAT_INTERVAL must be positive")
	}
	if len(c.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be at least 32 bytes")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas, dropping blanks.
func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c Config) TransportOptions() ws.Options {
	return ws.Options{
		BufferSize:     c.ConnectionBufferSize,
		MaxMessageSize: int64(c.MaxMessageSize),
		WriteWait:      c.WriteWait,
		PongWait:       c.PongWait,
		AllowedOrigins: c.Origins(),
	}
}
