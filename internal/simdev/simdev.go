// Package simdev provides an in-memory PortBrain controller that implements
// channel.Transport. It answers the full command set and can be told to stay
// silent, reply with garbage or fail writes.
package simdev

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/allbin/portbrain/channel"
)

// Hardware layout of a PortBrain
const (
	NumPorts        = 6
	NumAnalogInputs = 5
	MaxAnalogValue  = 1023
)

// DefaultVersion is the reply to VER unless WithVersion overrides it
const DefaultVersion = "1.4"

// Replies that carry no value
const (
	ReplyOK    = "OK"
	ReplyError = "ERR"
)

// Mode selects how the device answers
type Mode int

const (
	ModeNormal  Mode = iota // answer every command
	ModeSilent              // accept commands, never answer
	ModeGarbage             // answer every command with non-numeric noise
)

var (
	ErrClosed     = errors.New("simulated device is closed")
	ErrWriteFault = errors.New("simulated write fault")
)

// Ensure Device implements channel.Transport at compile time
var _ channel.Transport = (*Device)(nil)

// Option configures a Device
type Option func(*Device)

// WithVersion sets the VER reply
func WithVersion(v string) Option {
	return func(d *Device) {
		d.version = v
	}
}

// WithTerminator sets the terminator the device expects after commands and
// appends to its replies
func WithTerminator(term []byte) Option {
	return func(d *Device) {
		if len(term) > 0 {
			d.terminator = append([]byte(nil), term...)
		}
	}
}

// WithMode sets the answering mode
func WithMode(m Mode) Option {
	return func(d *Device) {
		d.mode = m
	}
}

// WithWriteError makes every write fail with err
func WithWriteError(err error) Option {
	return func(d *Device) {
		d.writeErr = err
	}
}

// WithOpenError makes Open fail with err
func WithOpenError(err error) Option {
	return func(d *Device) {
		d.openErr = err
	}
}

// WithAnalogInput presets analog input n
func WithAnalogInput(n, value int) Option {
	return func(d *Device) {
		if n >= 0 && n < NumAnalogInputs {
			d.adc[n] = value
		}
	}
}

// WithReadDelay makes every read wait d before returning, like a serial
// port read timeout
func WithReadDelay(delay time.Duration) Option {
	return func(d *Device) {
		d.readDelay = delay
	}
}

// Device is a simulated PortBrain. It is safe for concurrent use.
type Device struct {
	mu         sync.Mutex
	version    string
	terminator []byte
	mode       Mode
	writeErr   error
	openErr    error
	readDelay  time.Duration

	open     bool
	name     string
	settings string
	in       []byte
	out      []byte
	history  []string

	ports [NumPorts]int
	dirs  [NumPorts]int
	adc   [NumAnalogInputs]int
}

// New returns a closed device answering with CR terminators
func New(opts ...Option) *Device {
	d := &Device{
		version:    DefaultVersion,
		terminator: []byte("\r"),
	}
	for i := range d.adc {
		d.adc[i] = (i + 1) * 100
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open marks the device open. name and settings are recorded but not
// interpreted.
func (d *Device) Open(name, settings string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.openErr != nil {
		return d.openErr
	}
	d.open = true
	d.name = name
	d.settings = settings
	d.in = d.in[:0]
	d.out = d.out[:0]
	return nil
}

// Close marks the device closed and drops pending bytes
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = false
	d.in = d.in[:0]
	d.out = d.out[:0]
	return nil
}

// Read returns pending reply bytes, or (0, nil) when none are waiting
func (d *Device) Read(p []byte) (int, error) {
	if d.readDelay > 0 {
		d.mu.Lock()
		pending := len(d.out)
		d.mu.Unlock()
		if pending == 0 {
			time.Sleep(d.readDelay)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return 0, ErrClosed
	}
	n := copy(p, d.out)
	d.out = d.out[n:]
	return n, nil
}

// Write feeds command bytes to the device. Every complete command is
// answered immediately.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return 0, ErrClosed
	}
	if d.writeErr != nil {
		return 0, d.writeErr
	}

	d.in = append(d.in, p...)
	for {
		cmd, rest, found := bytes.Cut(d.in, d.terminator)
		if !found {
			break
		}
		d.handle(string(cmd))
		d.in = append(d.in[:0], rest...)
	}
	return len(p), nil
}

// Flush drops pending input and output
func (d *Device) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.in = d.in[:0]
	d.out = d.out[:0]
	return nil
}

func (d *Device) handle(cmd string) {
	d.history = append(d.history, cmd)

	reply := d.execute(cmd)
	switch d.mode {
	case ModeSilent:
		return
	case ModeGarbage:
		reply = "#?!"
	}
	d.out = append(d.out, reply...)
	d.out = append(d.out, d.terminator...)
}

// execute applies cmd to the device state and returns the reply
func (d *Device) execute(cmd string) string {
	switch {
	case cmd == "VER":
		return d.version
	case hasVerb(cmd, "DIRRD"):
		if n, ok := index(cmd[5:], NumPorts); ok && len(cmd) == 6 {
			return strconv.Itoa(d.dirs[n])
		}
	case hasVerb(cmd, "DIRWR"):
		if n, v, ok := indexValue(cmd[5:], NumPorts); ok {
			d.dirs[n] = v
			return ReplyOK
		}
	case hasVerb(cmd, "ADC"):
		if n, ok := index(cmd[3:], NumAnalogInputs); ok && len(cmd) == 4 {
			return strconv.Itoa(d.adc[n])
		}
	case hasVerb(cmd, "PRTRD"):
		if n, ok := index(cmd[5:], NumPorts); ok && len(cmd) == 6 {
			return strconv.Itoa(d.ports[n])
		}
	case hasVerb(cmd, "PRTWR"):
		if n, v, ok := indexValue(cmd[5:], NumPorts); ok {
			d.ports[n] = v
			return ReplyOK
		}
	}
	return ReplyError
}

func hasVerb(cmd, verb string) bool {
	return len(cmd) > len(verb) && cmd[:len(verb)] == verb
}

// index decodes the single digit port or input number that follows a verb
func index(arg string, limit int) (int, bool) {
	if arg == "" {
		return 0, false
	}
	n := int(arg[0] - '0')
	if n < 0 || n >= limit {
		return 0, false
	}
	return n, true
}

// indexValue decodes "<n><value>" as used by the write verbs
func indexValue(arg string, limit int) (int, int, bool) {
	n, ok := index(arg, limit)
	if !ok || len(arg) < 2 {
		return 0, 0, false
	}
	v, err := strconv.Atoi(arg[1:])
	if err != nil {
		return 0, 0, false
	}
	return n, v, true
}

// SetMode changes the answering mode
func (d *Device) SetMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = m
}

// SetAnalogInput sets the value reported by ADC<n>
func (d *Device) SetAnalogInput(n, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n < 0 || n >= NumAnalogInputs {
		return fmt.Errorf("analog input %d out of range", n)
	}
	d.adc[n] = value
	return nil
}

// SetPort sets the value reported by PRTRD<n>, as if driven externally
func (d *Device) SetPort(n, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n < 0 || n >= NumPorts {
		return fmt.Errorf("port %d out of range", n)
	}
	d.ports[n] = value
	return nil
}

// Port returns the current value of digital port n
func (d *Device) Port(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= NumPorts {
		return 0
	}
	return d.ports[n]
}

// Direction returns the direction bits of digital port n
func (d *Device) Direction(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= NumPorts {
		return 0
	}
	return d.dirs[n]
}

// Commands returns every command received so far, without terminators
func (d *Device) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history...)
}

// IsOpen reports whether the device is open
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Name returns the name passed to the last successful Open
func (d *Device) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// Settings returns the settings string passed to the last successful Open
func (d *Device) Settings() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}
