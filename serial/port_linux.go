//go:build linux

package serial

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// port is a termios serial line
type port struct {
	mu     sync.RWMutex
	fd     int
	config Config
	closed bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// baudRates maps the supported line speeds onto termios constants
var baudRates = map[int]uint32{
	50: unix.B50, 75: unix.B75, 110: unix.B110, 134: unix.B134, 150: unix.B150,
	200: unix.B200, 300: unix.B300, 600: unix.B600, 1200: unix.B1200,
	1800: unix.B1800, 2400: unix.B2400, 4800: unix.B4800, 9600: unix.B9600,
	19200: unix.B19200, 38400: unix.B38400, 57600: unix.B57600,
	115200: unix.B115200, 230400: unix.B230400, 460800: unix.B460800,
	500000: unix.B500000, 576000: unix.B576000, 921600: unix.B921600,
	1000000: unix.B1000000, 1152000: unix.B1152000, 1500000: unix.B1500000,
	2000000: unix.B2000000, 2500000: unix.B2500000, 3000000: unix.B3000000,
	3500000: unix.B3500000, 4000000: unix.B4000000,
}

var dataBitFlags = map[int]uint32{
	5: unix.CS5,
	6: unix.CS6,
	7: unix.CS7,
	8: unix.CS8,
}

var parityFlags = map[Parity]uint32{
	ParityNone:  0,
	ParityOdd:   unix.PARENB | unix.PARODD,
	ParityEven:  unix.PARENB,
	ParityMark:  unix.PARENB | unix.PARODD | unix.CMSPAR,
	ParitySpace: unix.PARENB | unix.CMSPAR,
}

func getBaudRate(rate int) (uint32, error) {
	b, ok := baudRates[rate]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBaudRate, rate)
	}
	return b, nil
}

// Open acquires device exclusively in raw mode. Acquisition failures are
// reported as ErrDeviceNotFound, ErrPermissionDenied or ErrDeviceInUse.
func Open(device string, opts ...Option) (Port, error) {
	config, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	flags := unix.O_RDWR | unix.O_NOCTTY
	if config.WriteMode == WriteModeSynced {
		flags |= unix.O_SYNC
	}

	fd, err := unix.Open(device, flags, 0)
	if err != nil {
		return nil, classifyErrno(device, err)
	}

	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		unix.Close(fd)
		return nil, classifyErrno(device, err)
	}

	if err := setLine(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &port{fd: fd, config: config}, nil
}

// lineFlags returns the c_cflag bits for config
func lineFlags(config Config) (uint32, error) {
	baud, err := getBaudRate(config.BaudRate)
	if err != nil {
		return 0, err
	}
	cflag := unix.CREAD | unix.CLOCAL | baud | dataBitFlags[config.DataBits] | parityFlags[config.Parity]
	if config.StopBits == 2 {
		cflag |= unix.CSTOPB
	}
	return cflag, nil
}

// setLine applies config with all input, output and line processing off.
// VMIN=0 lets a read return as soon as one byte is waiting or VTIME expires.
func setLine(fd int, config Config) error {
	cflag, err := lineFlags(config)
	if err != nil {
		return err
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("%w: get termios: %v", ErrInvalidConfig, err)
	}

	baud := cflag & unix.CBAUD
	t.Cflag = cflag
	t.Iflag, t.Oflag, t.Lflag = 0, 0, 0
	t.Ispeed, t.Ospeed = baud, baud
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = config.readTimeoutTenths()

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("%w: set termios: %v", ErrInvalidConfig, err)
	}
	return nil
}

// withFD runs fn on the descriptor unless the port is closed
func (p *port) withFD(fn func(fd int) (int, error)) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	n, err := fn(p.fd)
	return max(n, 0), err
}

func (p *port) flush(queue int) error {
	_, err := p.withFD(func(fd int) (int, error) {
		return 0, unix.IoctlSetInt(fd, unix.TCFLSH, queue)
	})
	return err
}

func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	p.closed = true
	return unix.Close(p.fd)
}

// Read returns what is waiting, blocking at most the configured read timeout
func (p *port) Read(buf []byte) (int, error) {
	return p.withFD(func(fd int) (int, error) { return unix.Read(fd, buf) })
}

func (p *port) Write(data []byte) (int, error) {
	return p.withFD(func(fd int) (int, error) { return unix.Write(fd, data) })
}

// FlushInput discards unread input
func (p *port) FlushInput() error {
	return p.flush(unix.TCIFLUSH)
}

// FlushOutput discards unwritten output
func (p *port) FlushOutput() error {
	return p.flush(unix.TCOFLUSH)
}
