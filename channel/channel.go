package channel

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allbin/portbrain/timeout"
)

// Transport is the byte link a Channel frames commands over. Implementations
// only move bytes; framing and command timeouts live in Channel.
type Transport interface {
	// Open acquires the named link using transport specific settings
	Open(name, settings string) error
	// Close is only called after a successful Open, once per Open
	Close() error
	// Read returns whatever is waiting, up to len(p) bytes. A read that
	// finds nothing before the transport's own short timeout returns (0, nil).
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	// Flush discards transport level input and output buffers
	Flush() error
}

// Option configures a Channel
type Option func(*Channel)

// WithLogger sets the logger used for frame tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReadSize sets how many bytes a single Read requests
func WithReadSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithYield sleeps for d after every read that returned no data, to keep
// transports with non-blocking reads from spinning a core.
func WithYield(d time.Duration) Option {
	return func(c *Channel) {
		c.yield = d
	}
}

// WithSettings replaces the default settings used until Open is called
func WithSettings(s Settings) Option {
	return func(c *Channel) {
		c.settings = DefaultSettings().merge(s)
	}
}

// Channel runs the command/response protocol over a Transport: it writes a
// terminated command, accumulates bytes until a terminated response shows up
// and enforces the per-command timeout.
//
// A Channel supports one in-flight command. It is not safe for concurrent
// use; callers sharing one must serialize access.
type Channel struct {
	transport Transport
	settings  Settings
	open      bool
	readBuf   []byte
	writeBuf  []byte
	scratch   []byte
	readSize  int
	yield     time.Duration
	lastErr   ErrorCode
	logger    *slog.Logger
}

// New composes a Channel over t. A nil transport gives the bare protocol
// behavior: Open always succeeds, reads return nothing and writes succeed
// while the channel is open.
func New(t Transport, opts ...Option) *Channel {
	if t == nil {
		t = nopTransport{}
	}
	c := &Channel{
		transport: t,
		settings:  DefaultSettings(),
		readSize:  DefaultReadSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open applies the non-zero fields of s over the current settings and opens
// the transport. On failure the channel stays closed.
func (c *Channel) Open(s Settings) error {
	c.settings = c.settings.merge(s)

	if err := c.transport.Open(c.settings.TransportName, c.settings.TransportSettings); err != nil {
		c.open = false
		return err
	}
	c.open = true
	c.logger.Debug("channel opened",
		slog.String("name", c.settings.TransportName),
		slog.Duration("cmd_timeout", c.settings.CmdTimeout))

	if err := c.Flush(); err != nil {
		c.logger.Debug("flush after open failed", slog.String("name", c.settings.TransportName), slog.Any("error", err))
	}
	return nil
}

// Close releases the transport and invalidates the channel. The channel is
// closed afterwards even when the transport reports an error.
func (c *Channel) Close() error {
	wasOpen := c.open
	c.open = false
	if !wasOpen {
		return nil
	}
	c.logger.Debug("channel closed", slog.String("name", c.settings.TransportName))
	return c.transport.Close()
}

// IsOpen returns true while the channel holds a valid handle
func (c *Channel) IsOpen() bool {
	return c.open
}

// Name returns the transport name the channel was opened with
func (c *Channel) Name() string {
	return c.settings.TransportName
}

// Settings returns a copy of the active settings
func (c *Channel) Settings() Settings {
	s := c.settings
	s.ReadTerminator = clone(s.ReadTerminator)
	s.CmdTerminator = clone(s.CmdTerminator)
	return s
}

// LastError returns the outcome of the most recent SendCommand
func (c *Channel) LastError() ErrorCode {
	return c.lastErr
}

// Flush clears the read and write buffers along with the transport buffers
func (c *Channel) Flush() error {
	c.readBuf = c.readBuf[:0]
	c.writeBuf = c.writeBuf[:0]
	if !c.open {
		return nil
	}
	return c.transport.Flush()
}

// Read returns the bytes currently waiting on the transport. An empty result
// with a nil error means nothing arrived within the transport's read timeout.
func (c *Channel) Read() ([]byte, error) {
	if !c.open {
		return nil, ErrNotOpen
	}
	if cap(c.scratch) < c.readSize {
		c.scratch = make([]byte, c.readSize)
	}
	buf := c.scratch[:c.readSize]

	n, err := c.transport.Read(buf)
	if n < 0 {
		n = 0
	}
	return buf[:n], err
}

// Write sends all of data to the transport
func (c *Channel) Write(data []byte) error {
	if !c.open {
		return ErrNotOpen
	}
	n, err := c.transport.Write(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: %w (%d of %d bytes)", ErrWriteFailed, ErrShortWrite, n, len(data))
	}
	return nil
}

// IsResponseInBuffer reports whether buf holds a complete response. A nil
// terminator means the channel's read terminator.
func (c *Channel) IsResponseInBuffer(buf, terminator []byte) bool {
	if len(terminator) == 0 {
		terminator = c.settings.ReadTerminator
	}
	return HasResponse(buf, terminator)
}

// RemoveResponseFromBuffer splits buf at the first terminator. A nil
// terminator means the channel's read terminator.
func (c *Channel) RemoveResponseFromBuffer(buf, terminator []byte) (response, remainder []byte) {
	if len(terminator) == 0 {
		terminator = c.settings.ReadTerminator
	}
	return SplitResponse(buf, terminator)
}

// SendCommand writes cmd followed by the command terminator and waits for a
// terminated response.
//
// On success the response is returned without its terminator; any bytes
// after it are dropped. When the timeout fires the bytes received so far are
// returned together with ErrTimeout. LastError is updated either way.
func (c *Channel) SendCommand(cmd []byte) ([]byte, error) {
	c.lastErr = ErrCodeNone
	c.readBuf = c.readBuf[:0]

	c.writeBuf = append(c.writeBuf[:0], cmd...)
	c.writeBuf = append(c.writeBuf, c.settings.CmdTerminator...)
	if err := c.Write(c.writeBuf); err != nil {
		c.lastErr = ErrCodeWrite
		c.logger.Debug("command write failed",
			slog.String("name", c.settings.TransportName),
			slog.String("cmd", string(cmd)),
			slog.Any("error", err))
		return nil, err
	}
	c.logger.Debug("tx", slog.String("name", c.settings.TransportName), slog.String("data", fmt.Sprintf("%q", c.writeBuf)))

	deadline := timeout.New(c.settings.CmdTimeout)
	for {
		data, err := c.Read()
		if len(data) > 0 {
			c.readBuf = append(c.readBuf, data...)
		}
		if err != nil {
			c.logger.Debug("read failed",
				slog.String("name", c.settings.TransportName),
				slog.Bool("transient", IsTransient(err)),
				slog.Any("error", err))
		}

		if HasResponse(c.readBuf, c.settings.ReadTerminator) {
			break
		}

		if deadline.IsExpired() {
			c.lastErr = ErrCodeTimeout
			elapsed, _ := deadline.Status()
			c.logger.Debug("command timed out",
				slog.String("name", c.settings.TransportName),
				slog.String("cmd", string(cmd)),
				slog.String("elapsed", elapsed),
				slog.String("partial", fmt.Sprintf("%q", c.readBuf)))
			return clone(c.readBuf), fmt.Errorf("%w after %v", ErrTimeout, c.settings.CmdTimeout)
		}

		if len(data) == 0 && c.yield > 0 {
			time.Sleep(c.yield)
		}
	}

	response, _ := SplitResponse(c.readBuf, c.settings.ReadTerminator)
	c.logger.Debug("rx", slog.String("name", c.settings.TransportName), slog.String("data", fmt.Sprintf("%q", response)))
	return clone(response), nil
}

// HasResponse reports whether buf is non-empty and contains terminator
func HasResponse(buf, terminator []byte) bool {
	if len(buf) == 0 || len(terminator) == 0 {
		return false
	}
	return bytes.Contains(buf, terminator)
}

// SplitResponse splits buf at the first occurrence of terminator. The
// response excludes the terminator. Without a terminator the response is
// empty and the remainder is all of buf.
func SplitResponse(buf, terminator []byte) (response, remainder []byte) {
	if !HasResponse(buf, terminator) {
		return []byte{}, buf
	}
	response, remainder, _ = bytes.Cut(buf, terminator)
	return response, remainder
}

// nopTransport is the transport used when none is supplied
type nopTransport struct{}

func (nopTransport) Open(string, string) error   { return nil }
func (nopTransport) Close() error                { return nil }
func (nopTransport) Read([]byte) (int, error)    { return 0, nil }
func (nopTransport) Write(p []byte) (int, error) { return len(p), nil }
func (nopTransport) Flush() error                { return nil }
