package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/portbrain/internal/tui/colors"
)

// Exchange is one command and the device's reply
type Exchange struct {
	Timestamp time.Time
	Command   []byte
	Response  []byte
	Err       error
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

// ExchangeFormatter renders exchanges as single log lines
type ExchangeFormatter struct {
	mode DisplayMode
}

func NewExchangeFormatter(showHex, showASCII bool) *ExchangeFormatter {
	return &ExchangeFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (f *ExchangeFormatter) SetDisplayMode(showHex, showASCII bool) {
	f.mode.ShowHex = showHex
	f.mode.ShowASCII = showASCII
}

func (f *ExchangeFormatter) GetDisplayMode() DisplayMode {
	return f.mode
}

func (f *ExchangeFormatter) ToggleHex() {
	f.mode.ShowHex = !f.mode.ShowHex
}

// FormatBytes renders data in the enabled representations
func (f *ExchangeFormatter) FormatBytes(data []byte) string {
	var parts []string

	if f.mode.ShowASCII {
		parts = append(parts, Printable(data))
	}
	if f.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("[% X]", data))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d bytes", len(data)))
	}

	return strings.Join(parts, " ")
}

func (f *ExchangeFormatter) FormatExchange(ex Exchange) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", ex.Timestamp.Format("15:04:05.000")))

	tx := lipgloss.NewStyle().
		Foreground(colors.Peach).
		Bold(true).
		Render("↗ TX")

	line := fmt.Sprintf("%s %s %s", timestamp, tx, f.FormatBytes(ex.Command))

	var rx string
	switch {
	case ex.Err != nil:
		rx = lipgloss.NewStyle().Foreground(colors.Red).Bold(true).Render("✗ ERR")
		rx = fmt.Sprintf("%s %v", rx, ex.Err)
		if len(ex.Response) > 0 {
			rx += " partial " + f.FormatBytes(ex.Response)
		}
	default:
		rx = lipgloss.NewStyle().Foreground(colors.Sky).Bold(true).Render("↙ RX")
		rx = fmt.Sprintf("%s %s", rx, f.FormatBytes(ex.Response))
	}

	return line + "  " + rx
}

func (f *ExchangeFormatter) FormatExchanges(exchanges []Exchange) []string {
	formatted := make([]string, len(exchanges))
	for i, ex := range exchanges {
		formatted[i] = f.FormatExchange(ex)
	}
	return formatted
}

// Printable replaces non-printable bytes with dots
func Printable(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
