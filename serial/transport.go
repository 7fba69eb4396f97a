package serial

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allbin/portbrain/channel"
)

// DefaultTransportReadTimeout is the per-read timeout used by Transport.
// It must stay below the channel command timeout.
const DefaultTransportReadTimeout = 200 * time.Millisecond

// maxWriteRetries bounds retries of EAGAIN/EINTR during a single Write
const maxWriteRetries = 3

// Transport implements channel.Transport over a serial port
type Transport struct {
	port        Port
	name        string
	readTimeout time.Duration
	opener      Opener
	logger      *slog.Logger
}

// Ensure Transport implements channel.Transport at compile time
var _ channel.Transport = (*Transport)(nil)

// TransportOption configures a Transport
type TransportOption func(*Transport)

// WithTransportReadTimeout overrides DefaultTransportReadTimeout
func WithTransportReadTimeout(d time.Duration) TransportOption {
	return func(t *Transport) {
		t.readTimeout = d
	}
}

// WithOpener replaces the function used to open ports
func WithOpener(open Opener) TransportOption {
	return func(t *Transport) {
		if open != nil {
			t.opener = open
		}
	}
}

// WithTransportLogger sets the logger for open failures and I/O errors
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransport creates a closed serial transport
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		readTimeout: DefaultTransportReadTimeout,
		opener:      Open,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewChannel is shorthand for a channel.Channel composed over a new Transport
func NewChannel(logger *slog.Logger, opts ...channel.Option) *channel.Channel {
	opts = append([]channel.Option{channel.WithLogger(logger)}, opts...)
	return channel.New(NewTransport(WithTransportLogger(logger)), opts...)
}

// Open acquires the named port using a settings string such as
// "baud=115200,databits=8,parity=N,stopbits=1". An empty settings string
// means DefaultSettings. A port that is already open is closed first.
//
// Devices that are simply absent are logged at debug level; configuration
// and permission problems are logged as warnings.
func (t *Transport) Open(name, settings string) error {
	if t.port != nil {
		t.logger.Debug("reopening serial port", slog.String("port", t.name))
		t.Close()
	}

	if settings == "" {
		settings = DefaultSettings
	}

	opts, err := ParseSettings(settings)
	if err != nil {
		t.logger.Warn("invalid port settings", slog.String("port", name), slog.String("settings", settings), slog.Any("error", err))
		return err
	}
	opts = append(opts, WithReadTimeout(t.readTimeout))

	p, err := t.opener(name, opts...)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			t.logger.Debug("serial port not present", slog.String("port", name), slog.Any("error", err))
		} else {
			t.logger.Warn("failed to open serial port", slog.String("port", name), slog.Any("error", err))
		}
		return err
	}

	t.port = p
	t.name = name
	return nil
}

// Close releases the port. The transport is closed afterwards regardless of
// the error returned by the port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if errors.Is(err, ErrPortClosed) {
		return nil
	}
	return err
}

// Read reads up to len(p) bytes, returning (0, nil) when nothing arrived
// within the read timeout
func (t *Transport) Read(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrPortClosed
	}
	n, err := t.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", t.name, err)
	}
	return n, nil
}

// Write writes all of p, retrying short writes
func (t *Transport) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrPortClosed
	}

	written, retries := 0, 0
	for written < len(p) {
		n, err := t.port.Write(p[written:])
		written += n
		if err != nil {
			if channel.IsTransient(err) && retries < maxWriteRetries {
				retries++
				continue
			}
			return written, fmt.Errorf("write %s: %w", t.name, err)
		}
		if n == 0 {
			return written, fmt.Errorf("write %s: %w", t.name, io.ErrShortWrite)
		}
	}
	return written, nil
}

// Flush discards pending output and unread input
func (t *Transport) Flush() error {
	if t.port == nil {
		return nil
	}
	return errors.Join(t.port.FlushOutput(), t.port.FlushInput())
}

// Name returns the name of the open port, or "" when closed
func (t *Transport) Name() string {
	return t.name
}

// IsOpen reports whether a port is held
func (t *Transport) IsOpen() bool {
	return t.port != nil
}
