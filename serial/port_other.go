//go:build !linux

package serial

import (
	"errors"
	"fmt"

	bugst "go.bug.st/serial"
)

// bugstPort adapts a go.bug.st/serial port to the Port interface on
// platforms without the termios implementation
type bugstPort struct {
	port bugst.Port
}

var _ Port = (*bugstPort)(nil)

// Open opens a serial port with the given device path and options
func Open(device string, opts ...Option) (Port, error) {
	config, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	mode := &bugst.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		Parity:   toBugstParity(config.Parity),
		StopBits: bugst.OneStopBit,
	}
	if config.StopBits == 2 {
		mode.StopBits = bugst.TwoStopBits
	}

	p, err := bugst.Open(device, mode)
	if err != nil {
		return nil, classifyPortError(device, err)
	}

	if err := p.SetReadTimeout(config.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: failed to set read timeout: %v", ErrInvalidConfig, err)
	}

	return &bugstPort{port: p}, nil
}

func toBugstParity(p Parity) bugst.Parity {
	switch p {
	case ParityOdd:
		return bugst.OddParity
	case ParityEven:
		return bugst.EvenParity
	case ParityMark:
		return bugst.MarkParity
	case ParitySpace:
		return bugst.SpaceParity
	default:
		return bugst.NoParity
	}
}

// classifyPortError maps go.bug.st/serial error codes onto the package sentinels
func classifyPortError(device string, err error) error {
	var portErr *bugst.PortError
	if !errors.As(err, &portErr) {
		return fmt.Errorf("failed to open %s: %w", device, err)
	}

	switch portErr.Code() {
	case bugst.PortNotFound, bugst.InvalidSerialPort:
		return fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, device, err)
	case bugst.PermissionDenied:
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, device, err)
	case bugst.PortBusy:
		return fmt.Errorf("%w: %s: %v", ErrDeviceInUse, device, err)
	case bugst.InvalidSpeed:
		return fmt.Errorf("%w: %s: %v", ErrInvalidBaudRate, device, err)
	case bugst.InvalidDataBits, bugst.InvalidParity, bugst.InvalidStopBits:
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, device, err)
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
}

func (p *bugstPort) Close() error {
	return p.port.Close()
}

func (p *bugstPort) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if isPortClosed(err) {
		return n, ErrPortClosed
	}
	return n, err
}

func (p *bugstPort) Write(data []byte) (int, error) {
	n, err := p.port.Write(data)
	if isPortClosed(err) {
		return n, ErrPortClosed
	}
	return n, err
}

func (p *bugstPort) FlushInput() error {
	return p.port.ResetInputBuffer()
}

func (p *bugstPort) FlushOutput() error {
	return p.port.ResetOutputBuffer()
}

func isPortClosed(err error) bool {
	var portErr *bugst.PortError
	return errors.As(err, &portErr) && portErr.Code() == bugst.PortClosed
}
