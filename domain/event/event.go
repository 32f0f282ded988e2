package event

import (
	"vitatrack/domain"
)

const (
	NameRoomFull                = "room-full"
	NameAllUsers                = "all-users"
	NameUserJoined              = "user-joined"
	NameReceivingReturnedSignal = "receiving-returned-signal"
	NameUserLeft                = "user-left"
)

// Event is an outbound notification addressed to one connection.
type Event interface {
	Name() string
}

type RoomFull struct {
	Room domain.RoomID
}

func (RoomFull) Name() string { return NameRoomFull }

// AllUsers lists the members already present when the recipient joined, in join order.
type AllUsers struct {
	Room  domain.RoomID
	Users []domain.ConnectionID
}

func (AllUsers) Name() string { return NameAllUsers }

type UserJoined struct {
	Signal   domain.Signal
	CallerID domain.ConnectionID
	Metadata domain.Metadata
}

func (UserJoined) Name() string { return NameUserJoined }

type ReceivingReturnedSignal struct {
	Signal   domain.Signal
	ID       domain.ConnectionID
	Metadata domain.Metadata
}

func (ReceivingReturnedSignal) Name() string { return NameReceivingReturnedSignal }

type UserLeft struct {
	ID domain.ConnectionID
}

func (UserLeft) Name() string { return NameUserLeft }
