package channel

import "errors"

// Predefined errors returned by Channel operations
var (
	ErrNotOpen     = errors.New("channel is not open")
	ErrWriteFailed = errors.New("command write failed")
	ErrTimeout     = errors.New("timed out waiting for response")
	ErrShortWrite  = errors.New("short write")
)

// ErrorCode records the outcome of the most recent SendCommand
type ErrorCode string

const (
	ErrCodeNone    ErrorCode = ""
	ErrCodeWrite   ErrorCode = "write"
	ErrCodeTimeout ErrorCode = "timeout"
)

// IsTransient reports whether err is a temporary transport condition that
// is worth polling through, such as EAGAIN or EINTR.
func IsTransient(err error) bool {
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return false
}
