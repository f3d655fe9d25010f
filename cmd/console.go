/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/config"
	"github.com/allbin/polydaq/internal/console"
	"github.com/allbin/polydaq/internal/logger"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console [port]",
	Short: "Interactive single-key console for the board",
	Long: `Open the interactive console on the board's serial port.

The terminal is switched to raw mode and every key press is a command:
  0-9, a-f   read analog channel 0-15
  h, ?       show help
  q, Ctrl+C  quit

Only one reading is in flight at a time; a second channel key pressed
before the reply arrives is ignored. While the port is missing the
console retries it every --retry-delay and keeps accepting keys.

Example usage:
  polydaq console
  polydaq console /dev/ttyACM1
  polydaq console --timestamps --uppercase`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	addSerialFlags(consoleCmd)
	addConsoleFlags(consoleCmd)
	consoleCmd.Flags().Bool("no-list", false, "Skip listing candidate ports at startup")
}

func addSerialFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	cmd.Flags().String("parity", "none", "Parity: none, odd, even, mark, space")
}

func addConsoleFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("retry-delay", console.DefaultConfig().RetryDelay, "Wait between attempts to open the port")
	cmd.Flags().Duration("poll-interval", console.DefaultConfig().PollInterval, "Wait between reads while the port is open")
	cmd.Flags().Duration("exchange-timeout", 0, "Give up on a reply after this long (0 waits until the port closes)")
	cmd.Flags().Bool("uppercase", false, "Send A-F for channels 10-15")
	cmd.Flags().Bool("timestamps", false, "Prefix each line with the time")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	path := portArg(args, 0)
	link, err := newLink(path)
	if err != nil {
		return err
	}

	printer := console.NewPrinter(cmd.OutOrStdout(), settings.Console.Timestamps)
	c := console.New(link,
		printer,
		console.WithConfig(settings.ConsoleSettings()),
		console.WithLogger(log),
	)

	var enumerate func() []string
	if noList, _ := cmd.Flags().GetBool("no-list"); settings.Console.ListPorts && !noList {
		enumerate = polydaq.ListCandidatePorts
	}

	watchLogLevel()

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s, h for help, q to quit\n",
		styles.TitleStyle.Render("PolyDAQ console"), path)

	session := &console.Session{
		Console:   c,
		Terminal:  console.NewTerminal(os.Stdin),
		Input:     os.Stdin,
		Enumerate: enumerate,
		Log:       log,
	}
	err = session.Run(ctx)
	if werr := printer.Err(); werr != nil {
		log.Error("console output failed", zap.Error(werr))
		if err == nil {
			err = fmt.Errorf("console output: %w", werr)
		}
	}
	return err
}

// watchLogLevel follows log.level edits in the config file
func watchLogLevel() {
	config.Watch(v, func(cfg *config.Config) {
		level, err := logger.ParseLevel(cfg.Log.Level)
		if err != nil {
			return
		}
		if level != logLevel.Level() {
			logLevel.SetLevel(level)
			log.Info("log level changed", zap.Stringer("level", level))
		}
	}, func(err error) {
		log.Warn("config reload failed", zap.Error(err))
	})
}
