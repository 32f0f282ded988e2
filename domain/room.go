package domain

import "slices"

// RoomCapacity is the maximum number of simultaneous members of a room.
const RoomCapacity = 10

type RoomID string

// Room is a named rendezvous point. Members are kept in join order.
type Room struct {
	ID      RoomID
	members []ConnectionID
}

func NewRoom(id RoomID) *Room {
	return &Room{ID: id}
}

func (r *Room) Len() int {
	return len(r.members)
}

func (r *Room) IsEmpty() bool {
	return len(r.members) == 0
}

func (r *Room) Contains(id ConnectionID) bool {
	return slices.Contains(r.members, id)
}

// Members returns a copy of the member sequence in join order.
func (r *Room) Members() []ConnectionID {
	return slices.Clone(r.members)
}

func (r *Room) add(id ConnectionID) {
	r.members = append(r.members, id)
}

// Admit appends id unless the room already holds capacity members.
// It returns the members present before id, in join order.
func (r *Room) Admit(id ConnectionID, capacity int) ([]ConnectionID, bool) {
	if len(r.members) >= capacity {
		return nil, false
	}
	existing := r.Members()
	r.add(id)
	return existing, true
}

// Remove drops id from the member sequence. No-op if absent.
func (r *Room) Remove(id ConnectionID) {
	r.members = slices.DeleteFunc(r.members, func(m ConnectionID) bool { return m == id })
}
