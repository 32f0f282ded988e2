package domain

// Command is an inbound lifecycle event issued by one connection.
type Command interface {
	Origin() ConnectionID
}

type JoinRoomCommand struct {
	Connection ConnectionID
	Room       RoomID
	Metadata   Metadata
}

func (c JoinRoomCommand) Origin() ConnectionID { return c.Connection }

// SendingSignalCommand asks the relay to deliver an offer to UserToSignal.
// CallerID is what the sender claimed; the relay attaches Connection instead.
type SendingSignalCommand struct {
	Connection   ConnectionID
	UserToSignal ConnectionID
	Signal       Signal
	CallerID     ConnectionID
	Metadata     Metadata
}

func (c SendingSignalCommand) Origin() ConnectionID { return c.Connection }

// ReturningSignalCommand carries an answer back to the original caller.
type ReturningSignalCommand struct {
	Connection ConnectionID
	CallerID   ConnectionID
	Signal     Signal
	Metadata   Metadata
}

func (c ReturningSignalCommand) Origin() ConnectionID { return c.Connection }
