// Package domain contains core concepts of the signaling system.
// This file defines Connection identities and session states.
// No runtime, network, or UI logic should be added here.
package domain

import "encoding/json"

// ConnectionID is assigned by the transport on connect and is stable for the link's lifetime.
type ConnectionID string

// Metadata is a participant-supplied blob (display name, avatar...) carried through signaling untouched.
type Metadata = json.RawMessage

// Signal is an opaque handshake payload.
type Signal = json.RawMessage

type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnected
	StateInRoom
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateInRoom:
		return "in_room"
	default:
		return "disconnected"
	}
}
