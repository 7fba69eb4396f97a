package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/portbrain/internal/tui/colors"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// maxHistory is the number of commands kept for recall
const maxHistory = 100

// Placeholders per sending mode
const (
	asciiPlaceholder = "Command such as VER or PRTRD0, Enter to send..."
	hexPlaceholder   = "Hex bytes (e.g. 564552 or 56 45 52)..."
)

// SendingMode selects how typed text becomes command bytes
type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

// prompt returns the symbol and color shown before the input
func (s SendingMode) prompt() (string, lipgloss.Color) {
	if s == SendingModeHex {
		return "#", colors.Yellow
	}
	return ">", colors.Green
}

// Input is the raw command line of the dashboard. History recall keeps the
// unsent draft and restores it when stepping past the newest entry.
type Input struct {
	textInput   textinput.Model
	sendingMode SendingMode
	width       int

	history []string
	recall  int // index into history, -1 when editing the draft
	draft   string
}

func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = asciiPlaceholder
	ti.CharLimit = 64
	ti.Prompt = ""

	return &Input{textInput: ti, recall: -1}
}

// SetWidth sizes the field for a terminal width; border, padding, prompt
// and its space take six columns
func (i *Input) SetWidth(width int) {
	i.width = width
	i.textInput.Width = max(width-6, 20)
}

func (i *Input) Focus() { i.textInput.Focus() }

func (i *Input) Blur() { i.textInput.Blur() }

func (i *Input) Value() string { return i.textInput.Value() }

func (i *Input) SetValue(value string) { i.textInput.SetValue(value) }

func (i *Input) GetSendingMode() SendingMode { return i.sendingMode }

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeASCII {
		i.sendingMode = SendingModeHex
		i.textInput.Placeholder = hexPlaceholder
		return
	}
	i.sendingMode = SendingModeASCII
	i.textInput.Placeholder = asciiPlaceholder
}

// Command returns the bytes to send for the current value, decoding hex in
// hex mode
func (i *Input) Command() ([]byte, error) {
	value := strings.TrimSpace(i.textInput.Value())
	if i.sendingMode == SendingModeHex {
		return ParseHex(value)
	}
	return []byte(value), nil
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// ViewWithMode renders the boxed command line. Outside insert mode it shows
// a hint instead of the field.
func (i *Input) ViewWithMode(inputMode string, isInsertMode bool) string {
	symbol, color := i.sendingMode.prompt()
	prompt := lipgloss.NewStyle().Foreground(color).Bold(true).Render(symbol)

	body := lipgloss.NewStyle().
		Foreground(colors.Overlay0).
		Render("Press 'i' to send a raw command")
	if isInsertMode {
		body = i.textInput.View()
	}

	box := styles.InputStyle.
		Width(max(i.width-4, 10)).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		box = box.BorderForeground(colors.Green)
	}

	return box.Render(lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", body))
}

// AddToHistory records a sent command, skipping blanks and repeats of the
// newest entry
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}
	if n := len(i.history); n == 0 || i.history[n-1] != command {
		i.history = append(i.history, command)
		if len(i.history) > maxHistory {
			i.history = i.history[1:]
		}
	}
	i.recall = -1
	i.draft = ""
}

// History returns the recorded commands, oldest first
func (i *Input) History() []string {
	return i.history
}

// NavigateHistoryUp recalls the previous command
func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}
	switch {
	case i.recall == -1:
		i.draft = i.textInput.Value()
		i.recall = len(i.history) - 1
	case i.recall > 0:
		i.recall--
	}
	i.textInput.SetValue(i.history[i.recall])
}

// NavigateHistoryDown recalls the next command, then the draft
func (i *Input) NavigateHistoryDown() {
	if i.recall == -1 {
		return
	}
	if i.recall < len(i.history)-1 {
		i.recall++
		i.textInput.SetValue(i.history[i.recall])
		return
	}
	i.recall = -1
	i.textInput.SetValue(i.draft)
	i.draft = ""
}
