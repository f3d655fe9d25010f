package models

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/console"
	"github.com/allbin/polydaq/internal/tui/components"
	"github.com/allbin/polydaq/internal/tui/keys"
	"github.com/allbin/polydaq/internal/tui/styles"
)

type tickMsg time.Time

// eventQueue collects events raised while Update runs
type eventQueue struct {
	events []console.Event
}

func (q *eventQueue) Report(ev console.Event) {
	q.events = append(q.events, ev)
}

func (q *eventQueue) drain() []console.Event {
	events := q.events
	q.events = nil
	return events
}

// ConsoleModel is the full-screen console. Keystrokes and ticks drive the
// same Console as the line-mode console; bubbletea owns the terminal.
type ConsoleModel struct {
	console  *console.Console
	queue    *eventQueue
	keys     keys.ViewKeys
	help     help.Model
	terminal *components.Terminal
	status   *components.StatusBar

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewConsoleModel builds the model and the Console it drives, starting the
// log with the candidate ports
func NewConsoleModel(link *polydaq.Link, info components.ConnectionInfo, ports []string, timestamps bool, opts ...console.Option) *ConsoleModel {
	q := &eventQueue{}
	m := &ConsoleModel{
		console:  console.New(link, q, opts...),
		queue:    q,
		keys:     keys.NewViewKeys(),
		help:     help.New(),
		terminal: components.NewTerminal(80, 20, timestamps),
		status:   components.NewStatusBar(link.Path(), info),
	}
	m.console.ReportPorts(ports)
	m.flush()
	return m
}

// Console returns the driven console
func (m *ConsoleModel) Console() *console.Console {
	return m.console
}

// Terminal returns the event log view
func (m *ConsoleModel) Terminal() *components.Terminal {
	return m.terminal
}

func (m *ConsoleModel) Init() tea.Cmd {
	return m.tick()
}

func (m *ConsoleModel) tick() tea.Cmd {
	return tea.Tick(m.console.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *ConsoleModel) flush() {
	for _, ev := range m.queue.drain() {
		m.terminal.AddEvent(ev)
	}
}

func (m *ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.status.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.terminal.SetSize(msg.Width, m.contentHeight())
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.console.Service()
		m.flush()
		return m, m.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
			return m, m.terminal.Scroll(msg)
		case key.Matches(msg, m.keys.GotoTop):
			m.terminal.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.GotoBottom):
			m.terminal.GotoBottom()
			return m, nil
		}

		ch, ok := keyRune(msg)
		if !ok {
			return m, nil
		}
		action := m.console.HandleKey(ch)
		if action.Kind == polydaq.ActionQuit {
			m.quitting = true
			m.console.Close()
			m.flush()
			return m, tea.Quit
		}
		m.flush()
	}
	return m, nil
}

// keyRune maps a key press to the character the console dispatches on
func keyRune(msg tea.KeyMsg) (rune, bool) {
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && !msg.Alt {
			return msg.Runes[0], true
		}
	case tea.KeySpace:
		return ' ', true
	case tea.KeyCtrlC:
		return 3, true
	case tea.KeyEnter:
		return '\r', true
	case tea.KeyTab:
		return '\t', true
	case tea.KeyEsc:
		return 0x1b, true
	}
	return 0, false
}

func (m *ConsoleModel) contentHeight() int {
	// title, status bar and help line
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *ConsoleModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	title := styles.TitleStyle.Render("PolyDAQ console")
	status := m.status.Render(m.console.Link().State(), m.console.Pending(), time.Now().Format("15:04:05"))
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.terminal.View(),
		status,
		helpView,
	)
}
