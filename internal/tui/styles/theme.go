package styles

import (
	"github.com/allbin/polydaq/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Status styles
	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusBusyStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)

	// Console line styles
	TimestampStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	RequestStyle = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true)

	ReadingStyle = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(colors.Text)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve)
)
