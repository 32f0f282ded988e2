package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"vitatrack/contract"
	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/errors"
	"vitatrack/observability"
)

type session struct {
	state    domain.SessionState
	metadata domain.Metadata
}

// remember keeps metadata for later signals. An empty blob keeps the previous one.
func (s *session) remember(metadata domain.Metadata) {
	if len(metadata) > 0 {
		s.metadata = metadata
	}
}

// Stats is a point-in-time view of the coordinator.
type Stats struct {
	Connections int
	Rooms       int
	Members     int
}

// Coordinator drives each connection through Connected -> InRoom -> Disconnected.
//
// It is the only component that mutates the ConnectionRegistry and the RoomRegistry,
// and it does so under a single mutex so a join and a concurrent disconnect on the
// same room always observe a consistent snapshot. Signal relaying is a pass-through
// and does not take the lock.
type Coordinator struct {
	mu          sync.Mutex
	log         *slog.Logger
	metrics     *observability.Metrics
	relay       *Relay
	connections *ConnectionRegistry
	rooms       *RoomRegistry
	sessions    map[domain.ConnectionID]*session
}

func NewCoordinator(log *slog.Logger, relay *Relay, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		log:         log,
		metrics:     metrics,
		relay:       relay,
		connections: NewConnectionRegistry(),
		rooms:       NewRoomRegistry(domain.RoomCapacity),
		sessions:    make(map[domain.ConnectionID]*session),
	}
}

// Connect registers a freshly opened link in state Connected.
func (c *Coordinator) Connect(_ context.Context, id domain.ConnectionID, sink contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[id] = &session{state: domain.StateConnected}
	c.relay.Attach(id, sink)
	c.metrics.Connections.Set(float64(len(c.sessions)))
	c.log.Debug("Connection registered", "connection_id", id)
}

// Handle dispatches a command issued by a connection. Commands from a connection
// that is not registered (never connected, or already disconnected) are rejected.
func (c *Coordinator) Handle(ctx context.Context, cmd domain.Command) error {
	if !c.registered(cmd.Origin()) {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, cmd.Origin())
	}
	switch cmd := cmd.(type) {
	case domain.JoinRoomCommand:
		return c.Join(ctx, cmd)
	case domain.SendingSignalCommand:
		c.SendSignal(ctx, cmd)
		return nil
	case domain.ReturningSignalCommand:
		c.ReturnSignal(ctx, cmd)
		return nil
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownEvent, cmd)
	}
}

// Join places the connection in cmd.Room and answers with all-users, or with room-full
// when the room already holds domain.RoomCapacity members.
//
// Re-joining the current room only repeats all-users. Joining another room reserves the
// new slot first, then leaves the old room, so a full target keeps the connection where it was.
func (c *Coordinator) Join(ctx context.Context, cmd domain.JoinRoomCommand) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := cmd.Connection
	s, ok := c.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, id)
	}
	previous, inRoom := c.connections.LookupRoom(id)
	if inRoom && previous == cmd.Room {
		existing := lo.Without(c.rooms.Members(cmd.Room), id)
		s.remember(cmd.Metadata)
		c.metrics.Joins.WithLabelValues(observability.JoinRejoined).Inc()
		c.notify(ctx, id, event.AllUsers{Room: cmd.Room, Users: existing})
		return nil
	}

	existing, err := c.rooms.Join(cmd.Room, id)
	if stderrors.Is(err, errors.ErrRoomFull) {
		c.metrics.Joins.WithLabelValues(observability.JoinRoomFull).Inc()
		c.log.Info("Room full", "connection_id", id, "room_id", cmd.Room)
		c.notify(ctx, id, event.RoomFull{Room: cmd.Room})
		return err
	}

	if inRoom {
		c.leaveLocked(ctx, id, previous)
	}
	c.connections.RecordJoin(id, cmd.Room)
	s.state = domain.StateInRoom
	s.remember(cmd.Metadata)
	c.refreshGauges()
	c.metrics.Joins.WithLabelValues(observability.JoinJoined).Inc()
	c.log.Info("Joined room", "connection_id", id, "room_id", cmd.Room, "existing", len(existing))

	c.notify(ctx, id, event.AllUsers{Room: cmd.Room, Users: existing})
	return nil
}

// SendSignal forwards an offer to cmd.UserToSignal. The caller id attached is the
// sending connection's own id, whatever the frame claimed.
func (c *Coordinator) SendSignal(ctx context.Context, cmd domain.SendingSignalCommand) {
	if cmd.CallerID != "" && cmd.CallerID != cmd.Connection {
		c.log.Debug("Caller id mismatch, using connection id",
			"connection_id", cmd.Connection, "claimed", cmd.CallerID)
	}
	c.relay.RelayOffer(ctx, cmd.UserToSignal, cmd.Signal, cmd.Connection, c.metadataOr(cmd.Connection, cmd.Metadata))
}

// ReturnSignal forwards an answer back to cmd.CallerID.
func (c *Coordinator) ReturnSignal(ctx context.Context, cmd domain.ReturningSignalCommand) {
	c.relay.RelayAnswer(ctx, cmd.CallerID, cmd.Signal, cmd.Connection, c.metadataOr(cmd.Connection, cmd.Metadata))
}

// Disconnect is terminal. If the connection was in a room, the remaining members
// each receive one user-left event.
func (c *Coordinator) Disconnect(ctx context.Context, id domain.ConnectionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if roomID, ok := c.connections.LookupRoom(id); ok {
		c.leaveLocked(ctx, id, roomID)
	}
	delete(c.sessions, id)
	c.relay.Detach(id)
	c.refreshGauges()
	c.log.Debug("Connection closed", "connection_id", id)
}

// leaveLocked removes id from roomID in both registries and notifies the remaining members.
func (c *Coordinator) leaveLocked(ctx context.Context, id domain.ConnectionID, roomID domain.RoomID) {
	remaining := c.rooms.Leave(roomID, id)
	c.connections.Remove(id)
	if s, ok := c.sessions[id]; ok {
		s.state = domain.StateConnected
	}
	c.metrics.Departures.Inc()
	c.log.Info("Left room", "connection_id", id, "room_id", roomID, "remaining", len(remaining))

	for _, member := range remaining {
		c.notify(ctx, member, event.UserLeft{ID: id})
	}
}

// SweepEmptyRooms reclaims rooms nobody is in.
func (c *Coordinator) SweepEmptyRooms() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.rooms.Sweep()
	if n > 0 {
		c.log.Debug("Empty rooms swept", "swept", n, "remaining", c.rooms.Len())
	}
	return n
}

// State reports where id is in its lifecycle. Unknown ids are Disconnected.
func (c *Coordinator) State(id domain.ConnectionID) domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		return s.state
	}
	return domain.StateDisconnected
}

func (c *Coordinator) RoomOf(id domain.ConnectionID) (domain.RoomID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connections.LookupRoom(id)
}

func (c *Coordinator) Members(roomID domain.RoomID) []domain.ConnectionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms.Members(roomID)
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Connections: len(c.sessions),
		Rooms:       c.rooms.Occupied(),
		Members:     c.connections.Len(),
	}
}

func (c *Coordinator) registered(id domain.ConnectionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[id]
	return ok
}

func (c *Coordinator) metadataOr(id domain.ConnectionID, metadata domain.Metadata) domain.Metadata {
	if len(metadata) > 0 {
		return metadata
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[id]; ok {
		return s.metadata
	}
	return nil
}

func (c *Coordinator) notify(ctx context.Context, id domain.ConnectionID, e event.Event) {
	if err := c.relay.Notify(ctx, id, e); err != nil {
		c.log.Debug("Notification dropped", "connection_id", id, "event", e.Name(), "error", err)
	}
}

func (c *Coordinator) refreshGauges() {
	c.metrics.Connections.Set(float64(len(c.sessions)))
	c.metrics.Rooms.Set(float64(c.rooms.Occupied()))
	c.metrics.RoomMembers.Set(float64(c.connections.Len()))
}

// Snapshot is Stats flattened for the heartbeat worker.
func (c *Coordinator) Snapshot() (connections, rooms, members int) {
	s := c.Stats()
	return s.Connections, s.Rooms, s.Members
}
