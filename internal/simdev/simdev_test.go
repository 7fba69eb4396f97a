package simdev

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/portbrain/channel"
)

// exchange writes cmd plus CR and returns everything the device queued
func exchange(t *testing.T, d *Device, cmd string) string {
	t.Helper()
	_, err := d.Write([]byte(cmd + "\r"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := d.Read(buf)
	require.NoError(t, err)
	return string(buf[:n])
}

func openDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d := New(opts...)
	require.NoError(t, d.Open("sim0", "baud=115200"))
	return d
}

func TestCommandSet(t *testing.T) {
	d := openDevice(t, WithVersion("2.7"), WithAnalogInput(3, 777))

	assert.Equal(t, "2.7\r", exchange(t, d, "VER"))
	assert.Equal(t, "777\r", exchange(t, d, "ADC3"))
	assert.Equal(t, "100\r", exchange(t, d, "ADC0"))

	assert.Equal(t, "0\r", exchange(t, d, "DIRRD2"))
	assert.Equal(t, "OK\r", exchange(t, d, "DIRWR2255"))
	assert.Equal(t, "255\r", exchange(t, d, "DIRRD2"))
	assert.Equal(t, 255, d.Direction(2))

	assert.Equal(t, "OK\r", exchange(t, d, "PRTWR517"))
	assert.Equal(t, "17\r", exchange(t, d, "PRTRD5"))
	assert.Equal(t, 17, d.Port(5))

	assert.Equal(t, []string{"VER", "ADC3", "ADC0", "DIRRD2", "DIRWR2255", "DIRRD2", "PRTWR517", "PRTRD5"}, d.Commands())
}

func TestInvalidCommands(t *testing.T) {
	d := openDevice(t)

	for _, cmd := range []string{"", "HELLO", "ADC", "ADC5", "ADC12", "PRTRD6", "PRTRDx", "PRTWR0", "PRTWR0abc", "DIRWR9", "VER1"} {
		assert.Equal(t, "ERR\r", exchange(t, d, cmd), "command %q", cmd)
	}
}

func TestSplitWritesAndMultipleCommands(t *testing.T) {
	d := openDevice(t)

	_, err := d.Write([]byte("V"))
	require.NoError(t, err)
	_, err = d.Write([]byte("ER\rADC1\r"))
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := d.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "1.4\r200\r", string(buf[:n]))
}

func TestReadsAreChunked(t *testing.T) {
	d := openDevice(t)
	_, err := d.Write([]byte("VER\r"))
	require.NoError(t, err)

	var got []byte
	one := make([]byte, 1)
	for i := 0; i < 4; i++ {
		n, err := d.Read(one)
		require.NoError(t, err)
		got = append(got, one[:n]...)
	}
	assert.Equal(t, "1.4\r", string(got))

	n, err := d.Read(one)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestModes(t *testing.T) {
	d := openDevice(t, WithMode(ModeSilent))
	assert.Equal(t, "", exchange(t, d, "VER"))

	d.SetMode(ModeGarbage)
	assert.Equal(t, "#?!\r", exchange(t, d, "VER"))

	d.SetMode(ModeNormal)
	assert.Equal(t, "1.4\r", exchange(t, d, "VER"))
}

func TestTerminator(t *testing.T) {
	d := openDevice(t, WithTerminator([]byte("\r\n")))
	_, err := d.Write([]byte("VER\r\n"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := d.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "1.4\r\n", string(buf[:n]))
}

func TestFailures(t *testing.T) {
	openErr := errors.New("no such device")
	d := New(WithOpenError(openErr))
	assert.ErrorIs(t, d.Open("sim0", ""), openErr)
	assert.False(t, d.IsOpen())

	d = openDevice(t, WithWriteError(ErrWriteFault))
	_, err := d.Write([]byte("VER\r"))
	assert.ErrorIs(t, err, ErrWriteFault)

	d = New()
	_, err = d.Write([]byte("VER\r"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseAndFlushDropPending(t *testing.T) {
	d := openDevice(t)
	_, err := d.Write([]byte("VER\r"))
	require.NoError(t, err)
	require.NoError(t, d.Flush())

	n, err := d.Read(make([]byte, 8))
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = d.Write([]byte("VER\r"))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	require.NoError(t, d.Open("sim1", ""))
	n, err = d.Read(make([]byte, 8))
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "sim1", d.Name())
}

func TestSetters(t *testing.T) {
	d := New()
	assert.NoError(t, d.SetAnalogInput(4, 1023))
	assert.Error(t, d.SetAnalogInput(5, 1))
	assert.NoError(t, d.SetPort(0, 3))
	assert.Error(t, d.SetPort(-1, 3))
	assert.Equal(t, 3, d.Port(0))
	assert.Zero(t, d.Port(9))
}

func TestReadDelay(t *testing.T) {
	d := openDevice(t, WithReadDelay(20*time.Millisecond))
	start := time.Now()
	n, err := d.Read(make([]byte, 1))
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDrivesChannel(t *testing.T) {
	d := New()
	ch := channel.New(d)
	require.NoError(t, ch.Open(channel.Settings{
		ReadTerminator: []byte("\r"),
		CmdTerminator:  []byte("\r"),
		CmdTimeout:     100 * time.Millisecond,
		TransportName:  "sim0",
	}))
	defer ch.Close()

	resp, err := ch.SendCommand([]byte("VER"))
	require.NoError(t, err)
	assert.Equal(t, "1.4", string(resp))
	assert.Equal(t, "sim0", d.Name())

	d.SetMode(ModeSilent)
	_, err = ch.SendCommand([]byte("VER"))
	assert.ErrorIs(t, err, channel.ErrTimeout)
	assert.Equal(t, channel.ErrCodeTimeout, ch.LastError())
}
