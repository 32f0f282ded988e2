package runtime

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vitatrack/domain"
	"vitatrack/errors"
)

func TestConnectionRegistry_RecordJoin_Overwrites(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()
	id := domain.ConnectionID(uuid.NewString())

	// Given no mapping
	_, ok := registry.LookupRoom(id)
	req.False(ok)

	// When the connection joins a room, then another
	registry.RecordJoin(id, "r1")
	registry.RecordJoin(id, "r2")

	// Then only the last room is remembered
	room, ok := registry.LookupRoom(id)
	req.True(ok)
	req.Equal(domain.RoomID("r2"), room)
	req.Equal(1, registry.Len())

	registry.Remove(id)
	_, ok = registry.LookupRoom(id)
	req.False(ok)
	req.Zero(registry.Len())
}

func TestRoomRegistry_Join_MaterializesRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(domain.RoomCapacity)

	// Given an unknown room
	req.Nil(registry.Members("r1"))

	// When two connections join it
	existing, err := registry.Join("r1", "a")
	req.NoError(err)
	req.Empty(existing)
	existing, err = registry.Join("r1", "b")
	req.NoError(err)

	// Then the second one sees the first
	req.Equal([]domain.ConnectionID{"a"}, existing)
	req.Equal([]domain.ConnectionID{"a", "b"}, registry.Members("r1"))
	req.Equal(1, registry.Occupied())
}

func TestRoomRegistry_Join_Full(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(domain.RoomCapacity)

	for i := 0; i < domain.RoomCapacity; i++ {
		_, err := registry.Join("r1", domain.ConnectionID(fmt.Sprintf("c%d", i)))
		req.NoError(err)
	}

	// When the eleventh connection joins
	existing, err := registry.Join("r1", "c10")

	// Then it is refused and membership is unchanged
	req.ErrorIs(err, errors.ErrRoomFull)
	req.Nil(existing)
	req.Len(registry.Members("r1"), domain.RoomCapacity)
	req.NotContains(registry.Members("r1"), domain.ConnectionID("c10"))
}

func TestRoomRegistry_Leave_And_Sweep(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry(domain.RoomCapacity)
	_, _ = registry.Join("r1", "a")
	_, _ = registry.Join("r1", "b")
	_, _ = registry.Join("r2", "c")

	// When members leave
	req.Equal([]domain.ConnectionID{"b"}, registry.Leave("r1", "a"))
	req.Empty(registry.Leave("r2", "c"))
	req.Nil(registry.Leave("unknown", "a"))

	// Then the emptied room is kept until swept
	req.Equal(2, registry.Len())
	req.Equal(1, registry.Occupied())
	req.Equal(1, registry.Sweep())
	req.Equal(1, registry.Len())
	req.Nil(registry.Members("r2"))
	req.Zero(registry.Sweep())
}
