package portbrain

import "errors"

var (
	// ErrNotConnected is returned when the controller has no open channel
	ErrNotConnected = errors.New("portbrain: channel not open")
	// ErrMalformedResponse is returned when a reply cannot be decoded
	ErrMalformedResponse = errors.New("portbrain: malformed response")
	// ErrInvalidArgument is returned for port or input numbers out of range
	ErrInvalidArgument = errors.New("portbrain: invalid argument")
)
