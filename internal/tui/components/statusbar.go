package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/colors"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// ConnectionInfo describes the line settings shown in the status bar
type ConnectionInfo struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   polydaq.Parity
}

// ConnectionInfoFrom summarizes a port configuration
func ConnectionInfoFrom(cfg polydaq.Config) ConnectionInfo {
	return ConnectionInfo{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
	}
}

func (ci ConnectionInfo) String() string {
	return fmt.Sprintf("%d baud %d%s%d", ci.BaudRate, ci.DataBits, strings.ToUpper(ci.Parity.String()[:1]), ci.StopBits)
}

type StatusBar struct {
	portPath string
	width    int
	info     ConnectionInfo
}

func NewStatusBar(portPath string, info ConnectionInfo) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		info:     info,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// Render draws the bar: link state, port, pending channel on the left and
// line settings and clock on the right
func (sb *StatusBar) Render(state polydaq.LinkState, pending *polydaq.Exchange, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: link state, like the mode indicator in an editor
	modeStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Bold(true).
		Padding(0, 1)
	var mode string
	if state == polydaq.LinkOpen {
		mode = modeStyle.Background(colors.Green).Render("OPEN")
	} else {
		mode = modeStyle.Background(colors.Red).Render("CLOSED")
	}

	// Section 2: port path
	portStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	port := portStyle.Render(sb.portPath)

	// Section 3: exchange in flight
	var waiting string
	if pending != nil {
		waiting = styles.StatusBusyStyle.
			Padding(0, 1).
			Render(fmt.Sprintf("⏳ ch %d", pending.Channel))
	}

	dividerStyle := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1)
	divider := dividerStyle.Render("│")

	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render("⚡ " + sb.info.String())

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, waiting, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

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
