package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// Signaling
	ErrRoomFull          = fmt.Errorf("room is full")
	ErrUnknownTarget     = fmt.Errorf("target connection is not connected")
	ErrUnknownConnection = fmt.Errorf("connection is not registered")
	ErrSinkClosed        = fmt.Errorf("connection sink is closed")
	ErrSinkFull          = fmt.Errorf("connection sink is full")
	ErrInvalidFrame      = fmt.Errorf("invalid signaling frame")
	ErrUnknownEvent      = fmt.Errorf("unknown signaling event")

	// Accounts
	ErrNotFound           = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)
