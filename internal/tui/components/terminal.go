package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/allbin/polydaq/internal/console"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// maxLines is the scrollback kept by the terminal view
const maxLines = 2000

// Terminal is the scrolling log of console events
type Terminal struct {
	viewport   viewport.Model
	lines      []string
	timestamps bool
	follow     bool
}

func NewTerminal(width, height int, timestamps bool) *Terminal {
	return &Terminal{
		viewport:   viewport.New(width, height),
		timestamps: timestamps,
		follow:     true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// AddEvent appends the rendered event. Silent events add nothing.
func (t *Terminal) AddEvent(ev console.Event) {
	line := console.FormatEvent(ev)
	if line == "" {
		return
	}
	if t.timestamps {
		line = styles.TimestampStyle.Render("["+ev.Time.Format("15:04:05.000")+"]") + " " + line
	}

	t.lines = append(t.lines, strings.Split(line, "\n")...)
	if len(t.lines) > maxLines {
		t.lines = t.lines[len(t.lines)-maxLines:]
	}
	t.refresh()
}

func (t *Terminal) refresh() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

// Lines returns the rendered lines, oldest first
func (t *Terminal) Lines() []string {
	return t.lines
}

func (t *Terminal) GotoTop() {
	t.follow = false
	t.viewport.GotoTop()
}

func (t *Terminal) GotoBottom() {
	t.follow = true
	t.viewport.GotoBottom()
}

// Scroll hands a navigation key to the viewport. Following resumes once
// the view is back at the bottom.
func (t *Terminal) Scroll(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	t.follow = t.viewport.AtBottom()
	return cmd
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
