package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"vitatrack/contract"
	"vitatrack/domain"
	"vitatrack/sink"
)

// Frame size is bounded by the read limit, not by these buffers.
const ioBufferSize = 1024

// Options tunes the transport.
type Options struct {
	BufferSize     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	AllowedOrigins []string
}

// DefaultOptions mirrors the server defaults.
func DefaultOptions() Options {
	return Options{
		BufferSize:     256,
		MaxMessageSize: 64 * 1024,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
	}
}

// Send pings to peer with this period. Must be less than PongWait.
func (o Options) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// SignalingServer upgrades HTTP requests to websocket connections and drives
// the coordinator with their frames.
type SignalingServer struct {
	log         *slog.Logger
	coordinator contract.ICoordinator
	upgrader    websocket.Upgrader
	opts        Options
}

func NewSignalingServer(log *slog.Logger, coordinator contract.ICoordinator, opts Options) *SignalingServer {
	s := &SignalingServer{log: log, coordinator: coordinator, opts: opts}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  ioBufferSize,
		WriteBufferSize: ioBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// An empty allow-list accepts every origin. Requests without an Origin header
// are not from browsers and are accepted.
func (s *SignalingServer) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || lo.Contains(s.opts.AllowedOrigins, origin)
}

// ServeHTTP blocks for the lifetime of the connection.
func (s *SignalingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("Failed to upgrade connection", "error", err)
		return
	}

	id := domain.ConnectionID(uuid.NewString())
	connectionSink := sink.NewConnectionSink(s.opts.BufferSize)
	ctx := context.WithoutCancel(r.Context())

	s.coordinator.Connect(ctx, id, connectionSink)
	s.log.Debug("Connection opened", "connection_id", id, "remote", conn.RemoteAddr().String())

	client := NewClient(id, conn, connectionSink, s.coordinator, s.log, s.opts)
	go client.WritePump()
	client.ReadPump(ctx)
}
