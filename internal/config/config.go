// Package config loads polydaq settings from flags, POLYDAQ_* environment
// variables and an optional polydaq.toml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/console"
	"github.com/allbin/polydaq/internal/logger"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "POLYDAQ"

// FileName is the config file looked up when --config is not given
const FileName = "polydaq"

// Config is the complete set of settings
type Config struct {
	Port    string        `mapstructure:"port"`
	Serial  SerialConfig  `mapstructure:"serial"`
	Console ConsoleConfig `mapstructure:"console"`
	Log     logger.Config `mapstructure:"log"`
}

// SerialConfig holds line settings
type SerialConfig struct {
	BaudRate     int           `mapstructure:"baud_rate"`
	DataBits     int           `mapstructure:"data_bits"`
	StopBits     int           `mapstructure:"stop_bits"`
	Parity       string        `mapstructure:"parity"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SyncWrite    bool          `mapstructure:"sync_write"`
}

// ConsoleConfig holds the interactive console settings
type ConsoleConfig struct {
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	UppercaseRequests bool          `mapstructure:"uppercase_requests"`
	ExchangeTimeout   time.Duration `mapstructure:"exchange_timeout"`
	Timestamps        bool          `mapstructure:"timestamps"`
	ListPorts         bool          `mapstructure:"list_ports"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	serial := polydaq.DefaultConfig()
	cons := console.DefaultConfig()

	v.SetDefault("port", "/dev/ttyACM0")

	v.SetDefault("serial.baud_rate", serial.BaudRate)
	v.SetDefault("serial.data_bits", serial.DataBits)
	v.SetDefault("serial.stop_bits", serial.StopBits)
	v.SetDefault("serial.parity", serial.Parity.String())
	v.SetDefault("serial.write_timeout", serial.WriteTimeout.String())
	v.SetDefault("serial.sync_write", false)

	v.SetDefault("console.retry_delay", cons.RetryDelay.String())
	v.SetDefault("console.poll_interval", cons.PollInterval.String())
	v.SetDefault("console.uppercase_requests", cons.UppercaseRequests)
	v.SetDefault("console.exchange_timeout", cons.ExchangeTimeout.String())
	v.SetDefault("console.timestamps", false)
	v.SetDefault("console.list_ports", true)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Init prepares v: defaults, environment binding and the config file. An
// explicit file must exist; a missing file on the search path is ignored.
func Init(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("toml")
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// SearchPaths lists the directories searched for polydaq.toml
func SearchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "polydaq"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "polydaq"))
	}
	return paths
}

// Load decodes and validates the settings held by v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the port or console cannot use
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("%w: port is empty", polydaq.ErrInvalidConfig)
	}

	opts, err := c.SerialOptions()
	if err != nil {
		return err
	}
	serial := polydaq.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&serial); err != nil {
			return fmt.Errorf("serial: %w", err)
		}
	}

	if c.Console.RetryDelay <= 0 {
		return fmt.Errorf("%w: console.retry_delay must be positive", polydaq.ErrInvalidConfig)
	}
	if c.Console.PollInterval <= 0 {
		return fmt.Errorf("%w: console.poll_interval must be positive", polydaq.ErrInvalidConfig)
	}
	if c.Console.ExchangeTimeout < 0 {
		return fmt.Errorf("%w: console.exchange_timeout is negative", polydaq.ErrInvalidConfig)
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", polydaq.ErrInvalidConfig, err)
	}
	return nil
}

// SerialOptions converts the serial section into port options
func (c *Config) SerialOptions() ([]polydaq.Option, error) {
	parity, err := polydaq.ParseParity(c.Serial.Parity)
	if err != nil {
		return nil, err
	}

	opts := []polydaq.Option{
		polydaq.WithBaudRate(c.Serial.BaudRate),
		polydaq.WithDataBits(c.Serial.DataBits),
		polydaq.WithStopBits(c.Serial.StopBits),
		polydaq.WithParity(parity),
		polydaq.WithWriteTimeout(c.Serial.WriteTimeout),
	}
	if c.Serial.SyncWrite {
		opts = append(opts, polydaq.WithSyncWrite())
	}
	return opts, nil
}

// ConsoleSettings converts the console section for the console loop
func (c *Config) ConsoleSettings() console.Config {
	return console.Config{
		RetryDelay:        c.Console.RetryDelay,
		PollInterval:      c.Console.PollInterval,
		UppercaseRequests: c.Console.UppercaseRequests,
		ExchangeTimeout:   c.Console.ExchangeTimeout,
	}
}

// Watch calls fn with the reloaded settings each time the config file
// changes. Invalid edits are reported through onErr and otherwise ignored.
// It returns false when no config file is in use.
func Watch(v *viper.Viper, fn func(*Config), onErr func(error)) bool {
	if v.ConfigFileUsed() == "" {
		return false
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	v.WatchConfig()
	return true
}

// file mirrors Config with durations spelled as strings, the form viper
// decodes them from
type file struct {
	Port    string      `toml:"port"`
	Serial  fileSerial  `toml:"serial"`
	Console fileConsole `toml:"console"`
	Log     fileLog     `toml:"log"`
}

type fileSerial struct {
	BaudRate     int    `toml:"baud_rate"`
	DataBits     int    `toml:"data_bits"`
	StopBits     int    `toml:"stop_bits"`
	Parity       string `toml:"parity"`
	WriteTimeout string `toml:"write_timeout"`
	SyncWrite    bool   `toml:"sync_write"`
}

type fileConsole struct {
	RetryDelay        string `toml:"retry_delay"`
	PollInterval      string `toml:"poll_interval"`
	UppercaseRequests bool   `toml:"uppercase_requests"`
	ExchangeTimeout   string `toml:"exchange_timeout"`
	Timestamps        bool   `toml:"timestamps"`
	ListPorts         bool   `toml:"list_ports"`
}

type fileLog struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Write encodes cfg as TOML
func Write(w io.Writer, cfg *Config) error {
	f := file{
		Port: cfg.Port,
		Serial: fileSerial{
			BaudRate:     cfg.Serial.BaudRate,
			DataBits:     cfg.Serial.DataBits,
			StopBits:     cfg.Serial.StopBits,
			Parity:       cfg.Serial.Parity,
			WriteTimeout: cfg.Serial.WriteTimeout.String(),
			SyncWrite:    cfg.Serial.SyncWrite,
		},
		Console: fileConsole{
			RetryDelay:        cfg.Console.RetryDelay.String(),
			PollInterval:      cfg.Console.PollInterval.String(),
			UppercaseRequests: cfg.Console.UppercaseRequests,
			ExchangeTimeout:   cfg.Console.ExchangeTimeout.String(),
			Timestamps:        cfg.Console.Timestamps,
			ListPorts:         cfg.Console.ListPorts,
		},
		Log: fileLog{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		},
	}
	return toml.NewEncoder(w).Encode(f)
}

// Defaults returns the settings used when nothing is configured
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return cfg
}

// WriteFile writes cfg to path, refusing to replace an existing file unless
// force is set
func WriteFile(path string, cfg *Config, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	if err := Write(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
