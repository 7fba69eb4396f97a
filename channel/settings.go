package channel

import "time"

// Defaults applied by DefaultSettings
const (
	DefaultCmdTimeout = 300 * time.Millisecond
	DefaultReadSize   = 1
)

// Settings holds the options recognized by Channel.Open
type Settings struct {
	// ReadTerminator marks the end of a response
	ReadTerminator []byte
	// CmdTerminator is appended to every outgoing command
	CmdTerminator []byte
	// CmdTimeout bounds each SendCommand exchange
	CmdTimeout time.Duration
	// TransportName identifies the link, e.g. "/dev/ttyUSB0"
	TransportName string
	// TransportSettings is passed through to the transport, e.g.
	// "baud=115200,databits=8,parity=N,stopbits=1" for serial ports
	TransportSettings string
}

// DefaultSettings returns newline terminators and a 300ms command timeout
func DefaultSettings() Settings {
	return Settings{
		ReadTerminator: []byte("\n"),
		CmdTerminator:  []byte("\n"),
		CmdTimeout:     DefaultCmdTimeout,
	}
}

// merge overlays the non-zero fields of override onto s
func (s Settings) merge(override Settings) Settings {
	if len(override.ReadTerminator) > 0 {
		s.ReadTerminator = clone(override.ReadTerminator)
	}
	if len(override.CmdTerminator) > 0 {
		s.CmdTerminator = clone(override.CmdTerminator)
	}
	if override.CmdTimeout != 0 {
		s.CmdTimeout = override.CmdTimeout
	}
	if override.TransportName != "" {
		s.TransportName = override.TransportName
	}
	if override.TransportSettings != "" {
		s.TransportSettings = override.TransportSettings
	}
	return s
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
