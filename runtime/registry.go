package runtime

import (
	"vitatrack/domain"
	"vitatrack/errors"
)

// ConnectionRegistry maps each live connection to its current room.
// It never touches the RoomRegistry; the Coordinator keeps both in sync
// and serializes access to them.
type ConnectionRegistry struct {
	rooms map[domain.ConnectionID]domain.RoomID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{rooms: make(map[domain.ConnectionID]domain.RoomID)}
}

// RecordJoin sets or overwrites the mapping.
func (r *ConnectionRegistry) RecordJoin(connectionID domain.ConnectionID, roomID domain.RoomID) {
	r.rooms[connectionID] = roomID
}

// LookupRoom returns the connection's room, false if it is not a member of any room.
func (r *ConnectionRegistry) LookupRoom(connectionID domain.ConnectionID) (domain.RoomID, bool) {
	roomID, ok := r.rooms[connectionID]
	return roomID, ok
}

func (r *ConnectionRegistry) Remove(connectionID domain.ConnectionID) {
	delete(r.rooms, connectionID)
}

func (r *ConnectionRegistry) Len() int {
	return len(r.rooms)
}

// RoomRegistry maps room ids to ordered member sequences and enforces capacity.
// Rooms are materialized on first join and are never explicitly deleted;
// Sweep reclaims empty entries.
type RoomRegistry struct {
	capacity int
	rooms    map[domain.RoomID]*domain.Room
}

func NewRoomRegistry(capacity int) *RoomRegistry {
	return &RoomRegistry{
		capacity: capacity,
		rooms:    make(map[domain.RoomID]*domain.Room),
	}
}

// Join appends connectionID to the room and returns the prior members in join order.
// A full room yields errors.ErrRoomFull and is left untouched.
func (r *RoomRegistry) Join(roomID domain.RoomID, connectionID domain.ConnectionID) ([]domain.ConnectionID, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		room = domain.NewRoom(roomID)
		r.rooms[roomID] = room
	}
	existing, admitted := room.Admit(connectionID, r.capacity)
	if !admitted {
		return nil, errors.ErrRoomFull
	}
	return existing, nil
}

// Leave removes connectionID from the room (no-op if absent) and returns the remaining members.
func (r *RoomRegistry) Leave(roomID domain.RoomID, connectionID domain.ConnectionID) []domain.ConnectionID {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	room.Remove(connectionID)
	return room.Members()
}

// Members returns the room's members in join order, nil for an unknown room.
func (r *RoomRegistry) Members(roomID domain.RoomID) []domain.ConnectionID {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Members()
}

// Occupied counts rooms with at least one member.
func (r *RoomRegistry) Occupied() int {
	n := 0
	for _, room := range r.rooms {
		if !room.IsEmpty() {
			n++
		}
	}
	return n
}

// Sweep deletes empty rooms and reports how many were reclaimed.
func (r *RoomRegistry) Sweep() int {
	n := 0
	for id, room := range r.rooms {
		if room.IsEmpty() {
			delete(r.rooms, id)
			n++
		}
	}
	return n
}

func (r *RoomRegistry) Len() int {
	return len(r.rooms)
}
