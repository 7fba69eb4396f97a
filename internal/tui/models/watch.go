package models

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/portbrain/internal/tui/components"
	"github.com/allbin/portbrain/internal/tui/keys"
	"github.com/allbin/portbrain/internal/tui/styles"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// ErrNoDevice is reported when the port does not answer like a PortBrain
var ErrNoDevice = errors.New("no PortBrain responding")

// Device is the part of portbrain.Controller the dashboard polls
type Device interface {
	CheckForDevice() bool
	Version() string
	ReadPort(n int) (int, error)
	PortDirection(n int) (int, error)
	ReadAnalogInput(n int) (int, error)
}

// Sender sends raw commands typed in command mode
type Sender interface {
	SendCommand(cmd []byte) ([]byte, error)
}

// WatchConfig describes what to poll and how often
type WatchConfig struct {
	PortPath     string
	Settings     string
	Interval     time.Duration
	Ports        int
	AnalogInputs int
	Now          func() time.Time
}

// ConnectionStatusMsg carries the result of the initial device check
type ConnectionStatusMsg struct {
	Connected bool
	Version   string
	Error     error
}

// PollMsg carries a completed poll. Err is the first failed reading.
type PollMsg struct {
	Snapshot components.Snapshot
	Err      error
}

// ExchangeMsg carries the outcome of a raw command
type ExchangeMsg components.Exchange

type tickMsg time.Time

// Layout heights of the fixed parts
const (
	titleHeight     = 1
	inputHeight     = 3
	statusBarHeight = 1
	helpHeight      = 1
	minLogHeight    = 3
)

// WatchModel is the Bubble Tea model of the live I/O dashboard. Polls and
// raw commands run as tea.Cmds and take turns on the device.
type WatchModel struct {
	cfg    WatchConfig
	dev    Device
	sender Sender
	mu     sync.Mutex

	table     *components.IOTable
	log       *components.Log
	input     *components.Input
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.WatchKeys

	inputMode InputMode
	connected bool
	ready     bool
	paused    bool
	polling   bool
	last      components.Snapshot
	err       error
}

// NewWatchModel creates the dashboard for dev. sender may be nil, which
// disables command mode.
func NewWatchModel(cfg WatchConfig, dev Device, sender Sender) *WatchModel {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &WatchModel{
		cfg:       cfg,
		dev:       dev,
		sender:    sender,
		table:     components.NewIOTable(),
		log:       components.NewLog(80, minLogHeight),
		input:     components.NewInput(),
		statusBar: components.NewStatusBar(cfg.PortPath),
		help:      help.New(),
		keys:      keys.NewWatchKeys(),
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(&components.ConnectionInfo{Settings: cfg.Settings, Interval: cfg.Interval})
	return m
}

func (m *WatchModel) Init() tea.Cmd {
	return m.check
}

// check verifies that a PortBrain answers before polling starts
func (m *WatchModel) check() tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dev.CheckForDevice() {
		return ConnectionStatusMsg{Error: ErrNoDevice}
	}
	return ConnectionStatusMsg{Connected: true, Version: m.dev.Version()}
}

// poll reads every port and analog input once
func (m *WatchModel) poll() tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := components.Snapshot{
		Taken:  m.cfg.Now(),
		Ports:  make([]components.Reading, m.cfg.Ports),
		Analog: make([]components.Reading, m.cfg.AnalogInputs),
	}

	var first error
	for i := range s.Ports {
		v, err := m.dev.ReadPort(i)
		d, derr := m.dev.PortDirection(i)
		if err == nil {
			err = derr
		}
		s.Ports[i] = components.Reading{Value: v, Direction: d, Err: err}
		if first == nil {
			first = err
		}
	}
	for i := range s.Analog {
		v, err := m.dev.ReadAnalogInput(i)
		s.Analog[i] = components.Reading{Value: v, Err: err}
		if first == nil {
			first = err
		}
	}

	return PollMsg{Snapshot: s, Err: first}
}

// send issues a raw command and reports the exchange
func (m *WatchModel) send(cmd []byte) tea.Cmd {
	return func() tea.Msg {
		m.mu.Lock()
		defer m.mu.Unlock()

		resp, err := m.sender.SendCommand(cmd)
		return ExchangeMsg{Timestamp: m.cfg.Now(), Command: cmd, Response: resp, Err: err}
	}
}

func (m *WatchModel) tick() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *WatchModel) startPoll() tea.Cmd {
	if m.polling || !m.connected {
		return nil
	}
	m.polling = true
	return m.poll
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
		return m, nil

	case ConnectionStatusMsg:
		m.connected = msg.Connected
		if msg.Error != nil {
			m.err = msg.Error
			m.statusBar.SetDisconnected(msg.Error)
			return m, nil
		}
		m.statusBar.SetConnected()
		m.statusBar.SetVersion(msg.Version)
		return m, m.startPoll()

	case tickMsg:
		if m.paused {
			return m, m.tick()
		}
		return m, m.startPoll()

	case PollMsg:
		m.polling = false
		m.last = msg.Snapshot
		m.table.SetSnapshot(msg.Snapshot)
		m.statusBar.RecordPoll(msg.Err)
		return m, m.tick()

	case ExchangeMsg:
		m.log.Add(components.Exchange(msg))
		return m, nil

	case tea.KeyMsg:
		if m.inputMode == InputModeInsert {
			return m, m.updateInsert(msg)
		}
		return m, m.updateNormal(msg)
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *WatchModel) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.InsertMode):
		if m.sender != nil {
			m.inputMode = InputModeInsert
			m.input.Focus()
		}
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		m.statusBar.SetPaused(m.paused)
	case key.Matches(msg, m.keys.Refresh):
		return m.startPoll()
	case key.Matches(msg, m.keys.Clear):
		m.log.Clear()
	case key.Matches(msg, m.keys.ToggleHex):
		m.log.ToggleHex()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return cmd
	}
	return nil
}

func (m *WatchModel) updateInsert(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.inputMode = InputModeNormal
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Enter):
		if m.input.Value() == "" {
			return nil
		}
		cmd, err := m.input.Command()
		if err != nil {
			m.log.Add(components.Exchange{Timestamp: m.cfg.Now(), Command: []byte(m.input.Value()), Err: err})
			return nil
		}
		m.input.AddToHistory(m.input.Value())
		m.input.SetValue("")
		return m.send(cmd)
	case key.Matches(msg, m.keys.Up):
		m.input.NavigateHistoryUp()
		return nil
	case key.Matches(msg, m.keys.Down):
		m.input.NavigateHistoryDown()
		return nil
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *WatchModel) resize(width, height int) {
	m.table.SetWidth(width)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.help.Width = width

	tableHeight := lipgloss.Height(m.table.View())
	logHeight := height - titleHeight - tableHeight - inputHeight - statusBarHeight - helpHeight - 1
	if logHeight < minLogHeight {
		logHeight = minLogHeight
	}
	m.log.SetSize(width, logHeight)
}

func (m *WatchModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	if m.err != nil {
		content = styles.ErrorStyle.Render(m.err.Error())
	} else {
		content = m.table.View()
	}

	sections := []string{
		styles.TitleStyle.Render("PortBrain " + m.cfg.PortPath),
		content,
		styles.ContentBorderStyle.Render(m.log.View()),
		m.input.ViewWithMode(m.inputMode.String(), m.inputMode == InputModeInsert),
		m.statusBar.View(m.inputMode.String(), m.connected, m.cfg.Now().Format("15:04:05")),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Snapshot returns the last completed poll
func (m *WatchModel) Snapshot() components.Snapshot {
	return m.last
}

// Paused reports whether polling is paused
func (m *WatchModel) Paused() bool {
	return m.paused
}

// Mode returns the current input mode
func (m *WatchModel) Mode() InputMode {
	return m.inputMode
}

// Exchanges returns the raw commands sent so far
func (m *WatchModel) Exchanges() []components.Exchange {
	return m.log.Entries()
}
