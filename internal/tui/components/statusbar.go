package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/portbrain/internal/tui/colors"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// ConnectionInfo describes the link shown on the right of the status bar
type ConnectionInfo struct {
	Settings string
	Interval time.Duration
}

type StatusBar struct {
	portPath       string
	version        string
	status         string
	err            error
	width          int
	polls          int
	failures       int
	paused         bool
	connectionInfo *ConnectionInfo
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		status:   "Initializing...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func (sb *StatusBar) SetVersion(version string) {
	sb.version = version
}

func (sb *StatusBar) SetPaused(paused bool) {
	sb.paused = paused
}

func (sb *StatusBar) SetConnecting() {
	sb.status = "Connecting..."
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = "Connected"
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = fmt.Sprintf("Connection failed: %v", err)
		sb.err = err
	} else {
		sb.status = "Disconnected"
		sb.err = nil
	}
}

// RecordPoll counts a completed poll; err is the first failed reading
func (sb *StatusBar) RecordPoll(err error) {
	sb.polls++
	if err != nil {
		sb.failures++
	}
}

func (sb *StatusBar) Polls() (total, failed int) {
	return sb.polls, sb.failures
}

func (sb *StatusBar) Status() string {
	return sb.status
}

// View renders the status bar in nvim style: mode, port and indicator on
// the left, link details and time on the right
func (sb *StatusBar) View(inputMode string, connected bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := colors.Blue
	if inputMode == "INSERT" {
		modeBackground = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	var connIndicator string
	var status styles.StatusType
	switch {
	case sb.err != nil:
		status = styles.StatusError
		connIndicator = "✗"
	case connected:
		status = styles.StatusConnected
		connIndicator = "●"
	case sb.status == "Connecting...":
		status = styles.StatusConnecting
		connIndicator = "○"
	default:
		status = styles.StatusDisconnected
		connIndicator = "○"
	}
	connectionIndicator := styles.GetStatusStyle(status).Render(connIndicator)

	version := ""
	if sb.version != "" {
		version = lipgloss.NewStyle().
			Foreground(colors.Subtext1).
			Padding(0, 1).
			Render("v" + sb.version)
	}

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	pollText := fmt.Sprintf("polls %d", sb.polls)
	if sb.failures > 0 {
		pollText += fmt.Sprintf(" (%d failed)", sb.failures)
	}
	pollColor := colors.Subtext0
	if sb.paused {
		pollText += " PAUSED"
		pollColor = colors.Warning
	}
	polls := lipgloss.NewStyle().Foreground(pollColor).Padding(0, 1).Render(pollText)

	connInfo := "⚡ serial"
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %s every %v", sb.connectionInfo.Settings, sb.connectionInfo.Interval)
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, connectionIndicator, version, divider, polls)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	return statusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
