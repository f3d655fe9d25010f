package keys

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// ConsoleKeys are the single-key commands the board console understands
type ConsoleKeys struct {
	Channel key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	channels := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	for c := 'a'; c <= 'f'; c++ {
		channels = append(channels, string(c), string(c-'a'+'A'))
	}

	return ConsoleKeys{
		Channel: key.NewBinding(
			key.WithKeys(channels...),
			key.WithHelp("0-9 a-f", "read analog channel 0-15"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "H", "?"),
			key.WithHelp("h/?", "show this help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Channel, k.Help, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Channel},
		{k.Help, k.Quit},
	}
}

// HelpText renders the console key bindings, one per line
func HelpText() string {
	k := NewConsoleKeys()
	h := help.New()
	h.ShowAll = true
	return h.FullHelpView([][]key.Binding{k.ShortHelp()})
}
