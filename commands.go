package portbrain

import (
	"fmt"
	"strconv"
)

// Command verbs understood by the device
const (
	CmdVersion    = "VER"
	CmdReadDir    = "DIRRD"
	CmdWriteDir   = "DIRWR"
	CmdReadAnalog = "ADC"
	CmdReadPort   = "PRTRD"
	CmdWritePort  = "PRTWR"
)

// The index of a command is a single decimal digit
const (
	maxIndexDigits  = 1
	maxCommandIndex = 9
)

// I/O layout of a PortBrain
const (
	NumPorts        = 6
	NumAnalogInputs = 5
)

// Terminator ends both commands and replies on the wire
var Terminator = []byte("\r")

// DefaultPortSettings is the serial line configuration of a PortBrain
const DefaultPortSettings = "baud=115200,databits=8,parity=N,stopbits=1"

// encode builds verb<n>[<value>...]. The value of the write verbs follows the
// index without a separator.
func encode(verb string, n int, values ...int) ([]byte, error) {
	if n < 0 || n > maxCommandIndex {
		return nil, fmt.Errorf("%w: %s index %d", ErrInvalidArgument, verb, n)
	}
	cmd := make([]byte, 0, len(verb)+maxIndexDigits+len(values)*4)
	cmd = append(cmd, verb...)
	cmd = strconv.AppendInt(cmd, int64(n), 10)
	for _, v := range values {
		cmd = strconv.AppendInt(cmd, int64(v), 10)
	}
	return cmd, nil
}
