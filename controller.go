package portbrain

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"unicode/utf8"
)

// Channel is the part of channel.Channel a Controller needs
type Channel interface {
	IsOpen() bool
	Name() string
	SendCommand(cmd []byte) ([]byte, error)
}

// DeviceInfo describes the controller a Controller last talked to
type DeviceInfo struct {
	Version     string `json:"version" yaml:"version"`
	ChannelName string `json:"channel_name" yaml:"channel_name"`
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithLogger sets the logger used for command failures
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller sends PortBrain commands over a borrowed channel. It never opens
// or closes the channel. A Controller is not safe for concurrent use.
type Controller struct {
	ch      Channel
	version string
	logger  *slog.Logger
}

// NewController returns a controller using ch, which may be nil
func NewController(ch Channel, opts ...ControllerOption) *Controller {
	c := &Controller{
		ch:     ch,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) isOpen() bool {
	return c.ch != nil && c.ch.IsOpen()
}

// send runs a single exchange and returns the reply
func (c *Controller) send(cmd []byte) ([]byte, error) {
	if !c.isOpen() {
		return nil, ErrNotConnected
	}
	resp, err := c.ch.SendCommand(cmd)
	if err != nil {
		c.logger.Debug("command failed",
			slog.String("channel", c.ch.Name()),
			slog.String("cmd", string(cmd)),
			slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return resp, nil
}

// query sends cmd and decodes the reply as a base 10 integer
func (c *Controller) query(cmd []byte) (int, error) {
	resp, err := c.send(cmd)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(resp)))
	if err != nil {
		return 0, fmt.Errorf("%w: %s replied %q", ErrMalformedResponse, cmd, resp)
	}
	return v, nil
}

// CheckForDevice asks for the firmware version and reports whether the reply
// is text with the <major>.<minor> shape. The reply is kept as the version either way.
func (c *Controller) CheckForDevice() bool {
	resp, err := c.send([]byte(CmdVersion))
	if err != nil {
		return false
	}

	c.version = string(resp)
	if !utf8.Valid(resp) || bytes.Count(resp, []byte(".")) != 1 {
		c.logger.Debug("unexpected version reply",
			slog.String("channel", c.ch.Name()),
			slog.String("reply", fmt.Sprintf("%q", resp)))
		return false
	}
	return true
}

// PortDirection reads the direction bits of digital port n
func (c *Controller) PortDirection(n int) (int, error) {
	cmd, err := encode(CmdReadDir, n)
	if err != nil {
		return 0, err
	}
	return c.query(cmd)
}

// SetPortDirection sets the direction bits of digital port n
func (c *Controller) SetPortDirection(n, bits int) error {
	cmd, err := encode(CmdWriteDir, n, bits)
	if err != nil {
		return err
	}
	_, err = c.send(cmd)
	return err
}

// ReadAnalogInput reads analog input n (0-4)
func (c *Controller) ReadAnalogInput(n int) (int, error) {
	cmd, err := encode(CmdReadAnalog, n)
	if err != nil {
		return 0, err
	}
	return c.query(cmd)
}

// ReadPort reads digital port n (0-5)
func (c *Controller) ReadPort(n int) (int, error) {
	cmd, err := encode(CmdReadPort, n)
	if err != nil {
		return 0, err
	}
	return c.query(cmd)
}

// WritePort writes value to digital port n (0-5)
func (c *Controller) WritePort(n, value int) error {
	cmd, err := encode(CmdWritePort, n, value)
	if err != nil {
		return err
	}
	_, err = c.send(cmd)
	return err
}

// Version returns the reply to the last CheckForDevice
func (c *Controller) Version() string {
	return c.version
}

// DeviceInfo returns the version and the name of the channel in use
func (c *Controller) DeviceInfo() DeviceInfo {
	name := "None"
	if c.ch != nil {
		name = c.ch.Name()
	}
	return DeviceInfo{Version: c.version, ChannelName: name}
}

// Channel returns the channel the controller sends commands over
func (c *Controller) Channel() Channel {
	return c.ch
}
