package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr string
	}{
		{name: "continuous", input: "564552", want: []byte("VER")},
		{name: "spaced", input: "56 45 52", want: []byte("VER")},
		{name: "prefixed", input: "0x56 0X45", want: []byte("VE")},
		{name: "lowercase", input: "0d0a", want: []byte("\r\n")},
		{name: "empty", input: "   ", wantErr: "empty input"},
		{name: "invalid character", input: "5G", wantErr: "invalid hex character 'G'"},
		{name: "odd length", input: "564", wantErr: "even number of digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintable(t *testing.T) {
	assert.Equal(t, "OK..", Printable([]byte("OK\r\n")))
	assert.Equal(t, "", Printable(nil))
	assert.Equal(t, ".~ ", Printable([]byte{0x7f, '~', ' '}))
}

func TestExchangeFormatter_FormatBytes(t *testing.T) {
	f := NewExchangeFormatter(false, true)
	assert.Equal(t, "VER.", f.FormatBytes([]byte("VER\r")))

	f.ToggleHex()
	assert.True(t, f.GetDisplayMode().ShowHex)
	assert.Equal(t, "VER. [56 45 52 0D]", f.FormatBytes([]byte("VER\r")))

	f.SetDisplayMode(true, false)
	assert.Equal(t, "[4F 4B]", f.FormatBytes([]byte("OK")))

	f.SetDisplayMode(false, false)
	assert.Equal(t, "2 bytes", f.FormatBytes([]byte("OK")))
}

func TestExchangeFormatter_FormatExchange(t *testing.T) {
	f := NewExchangeFormatter(false, true)
	ts := time.Date(2025, 1, 2, 13, 4, 5, 6_000_000, time.UTC)

	line := f.FormatExchange(Exchange{Timestamp: ts, Command: []byte("VER"), Response: []byte("1.4")})
	assert.Contains(t, line, "13:04:05.006")
	assert.Contains(t, line, "TX")
	assert.Contains(t, line, "VER")
	assert.Contains(t, line, "RX")
	assert.Contains(t, line, "1.4")

	line = f.FormatExchange(Exchange{Timestamp: ts, Command: []byte("ADC1"), Response: []byte("10"), Err: errors.New("timeout")})
	assert.Contains(t, line, "ERR")
	assert.Contains(t, line, "timeout")
	assert.Contains(t, line, "partial 10")
	assert.NotContains(t, line, "RX")

	lines := f.FormatExchanges([]Exchange{{Command: []byte("A")}, {Command: []byte("B")}})
	assert.Len(t, lines, 2)
}

func TestInput_Command(t *testing.T) {
	in := NewInput()
	assert.Equal(t, SendingModeASCII, in.GetSendingMode())

	in.SetValue("  PRTRD0 ")
	cmd, err := in.Command()
	require.NoError(t, err)
	assert.Equal(t, []byte("PRTRD0"), cmd)

	in.ToggleSendingMode()
	assert.Equal(t, SendingModeHex, in.GetSendingMode())
	assert.Equal(t, "HEX", in.GetSendingMode().String())

	in.SetValue("56 45 52")
	cmd, err = in.Command()
	require.NoError(t, err)
	assert.Equal(t, []byte("VER"), cmd)

	in.SetValue("zz")
	_, err = in.Command()
	assert.Error(t, err)

	in.ToggleSendingMode()
	assert.Equal(t, SendingModeASCII, in.GetSendingMode())
}

func TestInput_History(t *testing.T) {
	in := NewInput()

	in.AddToHistory("VER")
	in.AddToHistory("VER")
	in.AddToHistory("  ")
	in.AddToHistory("ADC0")
	assert.Equal(t, []string{"VER", "ADC0"}, in.History())

	in.SetValue("PRT")
	in.NavigateHistoryUp()
	assert.Equal(t, "ADC0", in.Value())
	in.NavigateHistoryUp()
	assert.Equal(t, "VER", in.Value())
	in.NavigateHistoryUp()
	assert.Equal(t, "VER", in.Value())

	in.NavigateHistoryDown()
	assert.Equal(t, "ADC0", in.Value())
	in.NavigateHistoryDown()
	assert.Equal(t, "PRT", in.Value(), "navigating past the newest entry restores the draft")
}

func TestInput_HistoryBounded(t *testing.T) {
	in := NewInput()
	for i := 0; i < maxHistory+10; i++ {
		in.AddToHistory(strings.Repeat("x", i+1))
	}
	assert.Len(t, in.History(), maxHistory)
	assert.Equal(t, strings.Repeat("x", 11), in.History()[0])
}

func TestLog(t *testing.T) {
	l := NewLog(80, 5)

	l.Add(Exchange{Command: []byte("VER"), Response: []byte("1.4")})
	require.Len(t, l.Entries(), 1)
	assert.Contains(t, l.View(), "1.4")

	assert.False(t, l.ShowsHex())
	l.ToggleHex()
	assert.True(t, l.ShowsHex())
	assert.Contains(t, l.View(), "31 2E 34")

	l.Clear()
	assert.Empty(t, l.Entries())
}

func TestLog_Bounded(t *testing.T) {
	l := NewLog(80, 5)
	for i := 0; i < maxLogEntries+5; i++ {
		l.Add(Exchange{Command: []byte{byte(i)}})
	}
	assert.Len(t, l.Entries(), maxLogEntries)
	assert.Equal(t, []byte{5}, l.Entries()[0].Command)
}

func TestIOTable_Cells(t *testing.T) {
	assert.Equal(t, "00000101", readingBits(Reading{Value: 5}))
	assert.Equal(t, "", readingBits(Reading{Value: 1023}))
	assert.Equal(t, "", readingBits(Reading{Value: 5, Err: errors.New("x")}))
	assert.Equal(t, "42", readingValue(Reading{Value: 42}))
	assert.Equal(t, "", directionCell(Reading{Err: errors.New("x")}))
}

func TestIOTable_View(t *testing.T) {
	tbl := NewIOTable()
	assert.Contains(t, tbl.View(), "waiting for first poll")

	tbl.SetWidth(80)
	tbl.SetSnapshot(Snapshot{
		Taken: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
		Ports: []Reading{
			{Value: 3, Direction: 0},
			{Value: 255, Direction: 0xff},
			{Err: errors.New("timeout")},
		},
		Analog: []Reading{{Value: 512}},
	})

	view := tbl.View()
	for _, want := range []string{"P0", "P1", "P2", "A0", "00000011", "in", "out", "error", "512", "analog", "polled 10:00:00.000"} {
		assert.Contains(t, view, want)
	}
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar("/dev/ttyUSB0")
	assert.Equal(t, "Initializing...", sb.Status())

	sb.SetConnecting()
	assert.Equal(t, "Connecting...", sb.Status())

	sb.SetDisconnected(errors.New("no reply"))
	assert.Equal(t, "Connection failed: no reply", sb.Status())

	sb.SetDisconnected(nil)
	assert.Equal(t, "Disconnected", sb.Status())

	sb.SetConnected()
	sb.SetVersion("1.4")
	sb.SetWidth(160)
	sb.SetConnectionInfo(&ConnectionInfo{Settings: "baud=115200", Interval: time.Second})
	sb.RecordPoll(nil)
	sb.RecordPoll(errors.New("timeout"))

	total, failed := sb.Polls()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, failed)

	view := sb.View("NORMAL", true, "12:00:00")
	for _, want := range []string{"NORMAL", "/dev/ttyUSB0", "v1.4", "polls 2 (1 failed)", "baud=115200 every 1s", "12:00:00"} {
		assert.Contains(t, view, want)
	}

	sb.SetPaused(true)
	assert.Contains(t, sb.View("INSERT", true, ""), "PAUSED")
}
