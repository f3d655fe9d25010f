/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/config"
	"github.com/allbin/polydaq/internal/logger"
	"github.com/allbin/polydaq/internal/tui/colors"
)

var (
	cfgFile string

	// Filled in by initConfig before any command runs
	v        *viper.Viper
	settings *config.Config
	log      = zap.NewNop()
	logLevel zap.AtomicLevel
)

var errorStyle = lipgloss.NewStyle().
	Foreground(colors.Red).
	Bold(true)

// flagKeys binds command line flags to config keys. A flag only overrides
// the config when it is set.
var flagKeys = map[string]string{
	"log-level":        "log.level",
	"log-format":       "log.format",
	"baud":             "serial.baud_rate",
	"parity":           "serial.parity",
	"retry-delay":      "console.retry_delay",
	"poll-interval":    "console.poll_interval",
	"uppercase":        "console.uppercase_requests",
	"exchange-timeout": "console.exchange_timeout",
	"timestamps":       "console.timestamps",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "polydaq",
	Short: "Diagnostic console for the PolyDAQ data-acquisition board",
	Long: `polydaq talks to a PolyDAQ board over its USB serial port.

The console command turns single key presses into analog channel reads:
0-9 and a-f read channels 0-15, h or ? shows help, q or Ctrl+C quits.
The board may be unplugged and replugged at any time; the console keeps
retrying the port once a second.

Settings are read from flags, POLYDAQ_* environment variables and
polydaq.toml, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default polydaq.toml in ., $XDG_CONFIG_HOME/polydaq, ~/.config/polydaq)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format: console, json")
}

// initConfig loads the settings and builds the logger for cmd
func initConfig(cmd *cobra.Command) error {
	v = viper.New()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.BindPFlag(key, f)
		}
	})

	if err := config.Init(v, cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = cfg

	l, level, err := logger.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log, logLevel = l, level

	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// portArg returns args[i] when given, otherwise the configured port
func portArg(args []string, i int) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return settings.Port
}

// newLink builds a Closed link using the configured serial settings
func newLink(path string) (*polydaq.Link, error) {
	opts, err := settings.SerialOptions()
	if err != nil {
		return nil, err
	}
	return polydaq.NewLink(path,
		polydaq.WithPortOptions(opts...),
		polydaq.WithLinkLogger(log),
	), nil
}

// serialConfig resolves the configured serial settings
func serialConfig() (polydaq.Config, error) {
	cfg := polydaq.DefaultConfig()
	opts, err := settings.SerialOptions()
	if err != nil {
		return cfg, err
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
