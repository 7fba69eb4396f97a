package serial

import (
	"errors"
	"fmt"
	"syscall"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// IsUnavailable reports whether err means the device is absent or cannot be
// acquired, as opposed to a configuration or transient I/O problem.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrDeviceInUse)
}

// classifyErrno maps open(2) failures onto the package sentinels
func classifyErrno(device string, err error) error {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("failed to open %s: %w", device, err)
	}

	switch errno {
	case syscall.ENOENT, syscall.ENODEV, syscall.ENXIO:
		return fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, device, errno)
	case syscall.EACCES, syscall.EPERM:
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, device, errno)
	case syscall.EBUSY:
		return fmt.Errorf("%w: %s: %v", ErrDeviceInUse, device, errno)
	default:
		return fmt.Errorf("failed to open %s: %w", device, errno)
	}
}
