package ws

import (
	"encoding/json"
	"fmt"

	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/errors"
)

// Inbound event names.
const (
	EventJoinRoom        = "join-room"
	EventSendingSignal   = "sending-signal"
	EventReturningSignal = "returning-signal"
)

// Envelope is the frame exchanged in both directions: {"event": "...", "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type joinRoomData struct {
	RoomID   string          `json:"roomID"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type sendingSignalData struct {
	UserToSignal string          `json:"userToSignal"`
	Signal       json.RawMessage `json:"signal"`
	CallerID     string          `json:"callerID"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

type returningSignalData struct {
	CallerID string          `json:"callerID"`
	Signal   json.RawMessage `json:"signal"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type userJoinedData struct {
	Signal   json.RawMessage `json:"signal"`
	CallerID string          `json:"callerID"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type returnedSignalData struct {
	Signal   json.RawMessage `json:"signal"`
	ID       string          `json:"id"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Decode turns a frame received from connection id into a command.
func Decode(id domain.ConnectionID, env Envelope) (domain.Command, error) {
	switch env.Event {
	case EventJoinRoom:
		data, err := decodeJoinRoom(env.Data)
		if err != nil {
			return nil, err
		}
		return domain.JoinRoomCommand{
			Connection: id,
			Room:       domain.RoomID(data.RoomID),
			Metadata:   data.Metadata,
		}, nil

	case EventSendingSignal:
		var data sendingSignalData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidFrame, env.Event, err)
		}
		if data.UserToSignal == "" {
			return nil, fmt.Errorf("%w: %s: missing userToSignal", errors.ErrInvalidFrame, env.Event)
		}
		return domain.SendingSignalCommand{
			Connection:   id,
			UserToSignal: domain.ConnectionID(data.UserToSignal),
			Signal:       data.Signal,
			CallerID:     domain.ConnectionID(data.CallerID),
			Metadata:     data.Metadata,
		}, nil

	case EventReturningSignal:
		var data returningSignalData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidFrame, env.Event, err)
		}
		if data.CallerID == "" {
			return nil, fmt.Errorf("%w: %s: missing callerID", errors.ErrInvalidFrame, env.Event)
		}
		return domain.ReturningSignalCommand{
			Connection: id,
			CallerID:   domain.ConnectionID(data.CallerID),
			Signal:     data.Signal,
			Metadata:   data.Metadata,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
}

// join-room accepts either a bare room id string or {"roomID", "metadata"}.
func decodeJoinRoom(raw json.RawMessage) (joinRoomData, error) {
	var data joinRoomData
	var roomID string
	if err := json.Unmarshal(raw, &roomID); err == nil {
		data.RoomID = roomID
	} else if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("%w: %s: %v", errors.ErrInvalidFrame, EventJoinRoom, err)
	}
	if data.RoomID == "" {
		return data, fmt.Errorf("%w: %s: missing room id", errors.ErrInvalidFrame, EventJoinRoom)
	}
	return data, nil
}

// Encode turns an outbound event into a frame.
func Encode(e event.Event) (Envelope, error) {
	var payload any
	switch evt := e.(type) {
	case event.RoomFull:
		return Envelope{Event: evt.Name()}, nil
	case event.AllUsers:
		users := make([]string, 0, len(evt.Users))
		for _, u := range evt.Users {
			users = append(users, string(u))
		}
		payload = users
	case event.UserJoined:
		payload = userJoinedData{Signal: evt.Signal, CallerID: string(evt.CallerID), Metadata: evt.Metadata}
	case event.ReceivingReturnedSignal:
		payload = returnedSignalData{Signal: evt.Signal, ID: string(evt.ID), Metadata: evt.Metadata}
	case event.UserLeft:
		payload = string(evt.ID)
	default:
		return Envelope{}, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, e)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", e.Name(), err)
	}
	return Envelope{Event: e.Name(), Data: data}, nil
}
