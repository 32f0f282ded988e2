package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"vitatrack/contract"
	"vitatrack/domain"
	"vitatrack/errors"
	"vitatrack/sink"
)

// Client wraps a single websocket connection (a peer).
type Client struct {
	ID          domain.ConnectionID
	conn        *websocket.Conn
	sink        *sink.ConnectionSink
	coordinator contract.ICoordinator
	log         *slog.Logger
	opts        Options
}

func NewClient(id domain.ConnectionID, conn *websocket.Conn, sink *sink.ConnectionSink,
	coordinator contract.ICoordinator, log *slog.Logger, opts Options) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		sink:        sink,
		coordinator: coordinator,
		log:         log.With("connection_id", id),
		opts:        opts,
	}
}

// ReadPump pumps frames from the websocket connection to the coordinator.
//
// There is at most one reader per connection, so every inbound event of a
// connection is handled to completion before the next one is read.
// When ReadPump returns the connection has been disconnected from the coordinator.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.coordinator.Disconnect(ctx, c.ID)
		c.sink.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Debug("Undecodable frame ignored", "error", err)
			continue
		}
		cmd, err := Decode(c.ID, env)
		if err != nil {
			c.log.Debug("Frame ignored", "event", env.Event, "error", err)
			continue
		}
		if err := c.coordinator.Handle(ctx, cmd); err != nil && !stderrors.Is(err, errors.ErrRoomFull) {
			c.log.Warn("Command failed", "event", env.Event, "error", err)
		}
	}
}

// WritePump pumps events from the connection sink to the websocket connection.
//
// There is at most one writer per connection; pings are sent from here too.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt := <-c.sink.Outbound:
			env, err := Encode(evt)
			if err != nil {
				c.log.Error("Failed to encode event", "event", evt.Name(), "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Debug("Write failed", "event", env.Event, "error", err)
				return
			}

		case <-c.sink.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
