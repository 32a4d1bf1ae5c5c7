package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Reset    key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Position key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/stop"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Faster: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "interval -50ms"),
		),
		Slower: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "interval +50ms"),
		),
		Position: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "position"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset},
		{k.Faster, k.Slower, k.Position},
		{k.Help, k.Quit},
	}
}
