package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// maxLogEntries bounds the exchanges kept for redraws
const maxLogEntries = 500

// Log is a scrolling viewport of exchanges, newest at the bottom
type Log struct {
	viewport  viewport.Model
	formatter *ExchangeFormatter
	entries   []Exchange
}

func NewLog(width, height int) *Log {
	return &Log{
		viewport:  viewport.New(width, height),
		formatter: NewExchangeFormatter(false, true),
	}
}

func (l *Log) SetSize(width, height int) {
	l.viewport.Width = width
	l.viewport.Height = height
	l.refresh()
}

func (l *Log) Add(ex Exchange) {
	l.entries = append(l.entries, ex)
	if len(l.entries) > maxLogEntries {
		l.entries = l.entries[len(l.entries)-maxLogEntries:]
	}
	l.refresh()
}

func (l *Log) Entries() []Exchange {
	return l.entries
}

func (l *Log) Clear() {
	l.entries = nil
	l.viewport.SetContent("")
	l.viewport.GotoTop()
}

func (l *Log) ToggleHex() {
	l.formatter.ToggleHex()
	l.refresh()
}

func (l *Log) ShowsHex() bool {
	return l.formatter.GetDisplayMode().ShowHex
}

func (l *Log) refresh() {
	l.viewport.SetContent(strings.Join(l.formatter.FormatExchanges(l.entries), "\n"))
	l.viewport.GotoBottom()
}

func (l *Log) Update(msg tea.Msg) (*Log, tea.Cmd) {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return l, cmd
}

func (l *Log) View() string {
	return l.viewport.View()
}
