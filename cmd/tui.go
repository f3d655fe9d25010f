/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/console"
	"github.com/allbin/polydaq/internal/tui/components"
	"github.com/allbin/polydaq/internal/tui/models"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui [port]",
	Short: "Full-screen console for the board",
	Long: `Run the console in a full-screen view with a scrolling log and a
status bar showing the port state and any reading in flight.

Keys are the same as the console command. The arrow keys, page up/down,
home and end scroll the log.

Example usage:
  polydaq tui
  polydaq tui /dev/ttyACM1 --timestamps`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	addSerialFlags(tuiCmd)
	addConsoleFlags(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	// Warnings on stderr would tear the full-screen view
	quiet := log.WithOptions(zap.IncreaseLevel(zapcore.ErrorLevel))

	path := portArg(args, 0)
	opts, err := settings.SerialOptions()
	if err != nil {
		return err
	}
	link := polydaq.NewLink(path,
		polydaq.WithPortOptions(opts...),
		polydaq.WithLinkLogger(quiet),
	)

	serialCfg, err := serialConfig()
	if err != nil {
		return err
	}

	var ports []string
	if settings.Console.ListPorts {
		ports = polydaq.ListCandidatePorts()
	}

	m := models.NewConsoleModel(link,
		components.ConnectionInfoFrom(serialCfg),
		ports,
		settings.Console.Timestamps,
		console.WithConfig(settings.ConsoleSettings()),
		console.WithLogger(quiet),
	)
	defer m.Console().Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(os.Stdin),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}
