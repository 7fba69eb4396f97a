package keys

import "github.com/charmbracelet/bubbles/key"

// ModeKeys switch between polling (normal) and command (insert) mode
type ModeKeys struct {
	Quit       key.Binding
	Help       key.Binding
	InsertMode key.Binding
	Escape     key.Binding
}

func newModeKeys() ModeKeys {
	return ModeKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", ":"),
			key.WithHelp("i/:", "command mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to polling"),
		),
	}
}

// WatchKeys are the bindings of the live I/O dashboard
type WatchKeys struct {
	ModeKeys
	Pause          key.Binding
	Refresh        key.Binding
	Clear          key.Binding
	ToggleHex      key.Binding
	Enter          key.Binding
	ToggleSendMode key.Binding
	Up             key.Binding
	Down           key.Binding
}

func NewWatchKeys() WatchKeys {
	return WatchKeys{
		ModeKeys: newModeKeys(),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pause polling"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "poll now"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send command"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle ascii/hex"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous command"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next command"),
		),
	}
}

func (k WatchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Pause, k.Refresh, k.InsertMode, k.Quit}
}

func (k WatchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Refresh, k.Clear, k.ToggleHex},
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}
