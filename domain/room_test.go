package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Admit_KeepsJoinOrder(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	// Given three connections admitted one after the other
	first, ok := room.Admit("a", RoomCapacity)
	req.True(ok)
	second, ok := room.Admit("b", RoomCapacity)
	req.True(ok)
	third, ok := room.Admit("c", RoomCapacity)
	req.True(ok)

	// Then each one sees exactly the members already present
	req.Empty(first)
	req.Equal([]ConnectionID{"a"}, second)
	req.Equal([]ConnectionID{"a", "b"}, third)
	req.Equal([]ConnectionID{"a", "b", "c"}, room.Members())
}

func TestRoom_Admit_RefusesBeyondCapacity(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")

	// Given a room filled up to capacity
	for i := 0; i < RoomCapacity; i++ {
		_, ok := room.Admit(ConnectionID(fmt.Sprintf("c%d", i)), RoomCapacity)
		req.True(ok)
	}

	// When one more connection asks to get in
	existing, ok := room.Admit("late", RoomCapacity)

	// Then it is refused and the room is untouched
	req.False(ok)
	req.Nil(existing)
	req.Equal(RoomCapacity, room.Len())
	req.False(room.Contains("late"))
}

func TestRoom_Remove(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Admit("a", RoomCapacity)
	room.Admit("b", RoomCapacity)
	room.Admit("c", RoomCapacity)

	// When the middle member leaves
	room.Remove("b")

	// Then order is preserved for the others
	req.Equal([]ConnectionID{"a", "c"}, room.Members())

	// And removing an absent member is a no-op
	room.Remove("ghost")
	req.Equal(2, room.Len())

	room.Remove("a")
	room.Remove("c")
	req.True(room.IsEmpty())
}

func TestRoom_Members_ReturnsCopy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("lobby")
	room.Admit("a", RoomCapacity)

	members := room.Members()
	members[0] = "mutated"

	req.True(room.Contains("a"))
	req.False(room.Contains("mutated"))
}

func TestSessionState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("connected", StateConnected.String())
	req.Equal("in_room", StateInRoom.String())
	req.Equal("disconnected", StateDisconnected.String())
}
