package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allbin/polydaq"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "none", cfg.Serial.Parity)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.WriteTimeout)
	assert.Equal(t, time.Second, cfg.Console.RetryDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.Console.PollInterval)
	assert.Zero(t, cfg.Console.ExchangeTimeout)
	assert.True(t, cfg.Console.ListPorts)
	assert.Equal(t, "warn", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestWriteLoadsBack(t *testing.T) {
	want := Defaults()
	want.Port = "/dev/ttyUSB1"
	want.Serial.BaudRate = 57600
	want.Serial.Parity = "even"
	want.Console.UppercaseRequests = true
	want.Console.ExchangeTimeout = 3 * time.Second
	want.Log.Level = "debug"

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(&buf))

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInitMissingSearchFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, Init(v, ""))
	assert.Empty(t, v.ConfigFileUsed())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestInitExplicitFileMustExist(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInitPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polydaq.toml")
	cfg := Defaults()
	cfg.Port = "/dev/ttyACM3"
	cfg.Console.RetryDelay = 2 * time.Second
	require.NoError(t, WriteFile(path, cfg, false))

	t.Setenv("POLYDAQ_CONSOLE_RETRY_DELAY", "5s")

	v := viper.New()
	require.NoError(t, Init(v, path))

	got, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM3", got.Port)
	assert.Equal(t, 5*time.Second, got.Console.RetryDelay)
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "polydaq.toml")
	require.NoError(t, WriteFile(path, Defaults(), false))
	assert.ErrorIs(t, WriteFile(path, Defaults(), false), os.ErrExist)
	assert.NoError(t, WriteFile(path, Defaults(), true))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = " " }},
		{"bad baud", func(c *Config) { c.Serial.BaudRate = 12345 }},
		{"bad parity", func(c *Config) { c.Serial.Parity = "x" }},
		{"bad data bits", func(c *Config) { c.Serial.DataBits = 9 }},
		{"zero write timeout", func(c *Config) { c.Serial.WriteTimeout = 0 }},
		{"zero retry", func(c *Config) { c.Console.RetryDelay = 0 }},
		{"negative poll", func(c *Config) { c.Console.PollInterval = -time.Millisecond }},
		{"negative exchange timeout", func(c *Config) { c.Console.ExchangeTimeout = -time.Second }},
		{"bad log level", func(c *Config) { c.Log.Level = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSerialOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Serial.BaudRate = 9600
	cfg.Serial.Parity = "O"
	cfg.Serial.SyncWrite = true

	opts, err := cfg.SerialOptions()
	require.NoError(t, err)

	serial := polydaq.DefaultConfig()
	for _, opt := range opts {
		require.NoError(t, opt(&serial))
	}
	assert.Equal(t, 9600, serial.BaudRate)
	assert.Equal(t, polydaq.ParityOdd, serial.Parity)
	assert.Equal(t, polydaq.WriteModeSynced, serial.WriteMode)
}

func TestConsoleSettings(t *testing.T) {
	cfg := Defaults()
	cfg.Console.UppercaseRequests = true

	cc := cfg.ConsoleSettings()
	assert.Equal(t, time.Second, cc.RetryDelay)
	assert.Equal(t, 100*time.Millisecond, cc.PollInterval)
	assert.True(t, cc.UppercaseRequests)
}

func TestWatchWithoutFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	assert.False(t, Watch(v, func(*Config) {}, nil))
}
