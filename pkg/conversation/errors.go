package conversation

import "errors"

// Invalid inputs are rejected synchronously and leave the session untouched.
var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrNotConnected         = errors.New("no open connection")
	ErrCityRequired         = errors.New("select a city first")
	ErrCityAlreadySet       = errors.New("city already selected")
	ErrCityGateInactive     = errors.New("city selection is not active")
	ErrSlotAlreadyConfirmed = errors.New("slot already confirmed")
	ErrSessionClosed        = errors.New("session is closed")
)
