package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/portbrain/serial"
)

type resetCalls struct {
	paths   []string
	serials []string
}

func fakeReset(t *testing.T, available bool, err error) *resetCalls {
	t.Helper()
	calls := &resetCalls{}
	oldAvailable, oldPath, oldSerial := usbResetAvailable, resetByPath, resetBySerial
	usbResetAvailable = func() bool { return available }
	resetByPath = func(p string) error {
		calls.paths = append(calls.paths, p)
		return err
	}
	resetBySerial = func(s string) error {
		calls.serials = append(calls.serials, s)
		return err
	}
	t.Cleanup(func() {
		usbResetAvailable, resetByPath, resetBySerial = oldAvailable, oldPath, oldSerial
	})
	return calls
}

func TestResetCommand(t *testing.T) {
	calls := fakeReset(t, true, nil)

	out, err := execute(t, "reset", "/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Contains(t, out, "USB device reset successfully")
	assert.Equal(t, []string{"/dev/ttyUSB0"}, calls.paths)

	_, err = execute(t, "reset", "--serial", "A50285BI")
	require.NoError(t, err)
	assert.Equal(t, []string{"A50285BI"}, calls.serials)
}

func TestResetCommand_Args(t *testing.T) {
	calls := fakeReset(t, true, nil)

	_, err := execute(t, "reset")
	assert.ErrorContains(t, err, "requires either a port path")

	_, err = execute(t, "reset", "/dev/ttyUSB0", "--serial", "A50285BI")
	assert.ErrorContains(t, err, "cannot specify both")

	assert.Empty(t, calls.paths)
	assert.Empty(t, calls.serials)
}

func TestResetCommand_Failures(t *testing.T) {
	fakeReset(t, false, nil)
	_, err := execute(t, "reset", "/dev/ttyUSB0")
	assert.ErrorIs(t, err, serial.ErrUSBResetNotAvailable)

	fakeReset(t, true, serial.ErrUSBInfoNotAvailable)
	_, err = execute(t, "reset", "/dev/ttyS0")
	assert.ErrorIs(t, err, serial.ErrUSBInfoNotAvailable)
}
