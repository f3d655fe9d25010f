package keys

import "github.com/charmbracelet/bubbles/key"

// ViewKeys scroll the full-screen console. Letters and digits are console
// commands, so scrolling stays on the navigation keys.
type ViewKeys struct {
	ConsoleKeys
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	GotoTop    key.Binding
	GotoBottom key.Binding
}

func NewViewKeys() ViewKeys {
	return ViewKeys{
		ConsoleKeys: NewConsoleKeys(),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		GotoTop: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "goto top"),
		),
		GotoBottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "goto bottom"),
		),
	}
}

func (k ViewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Channel, k.Help, k.Quit}
}

func (k ViewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Channel, k.Help, k.Quit},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.GotoTop, k.GotoBottom},
	}
}
