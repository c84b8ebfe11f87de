package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the server.
type Config struct {
	// Server settings
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Performance settings
	MaxClients int           `mapstructure:"max_clients"`
	Timeout    time.Duration `mapstructure:"timeout"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Persistence — the AOF file lives at <DataDir>/server.aof
	DataDir string `mapstructure:"data_dir"`

	// Advanced
	TCPKeepAlive bool          `mapstructure:"tcp_keepalive"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         1234,
		MaxClients:   10000,
		Timeout:      30 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
		DataDir:      ".",
		TCPKeepAlive: true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables, an optional
// config file, and command line flags, in ascending precedence. onChange,
// if non-nil, is invoked with the reloaded Config whenever the config file
// changes on disk (wired through fsnotify via viper.WatchConfig).
func LoadConfig(onChange func(*Config)) (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("kvline")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/kvline/")
	viper.AddConfigPath("$HOME/.kvline")

	viper.SetEnvPrefix("KVLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("host", config.Host)
	viper.SetDefault("port", config.Port)
	viper.SetDefault("max_clients", config.MaxClients)
	viper.SetDefault("timeout", config.Timeout)
	viper.SetDefault("log_level", config.LogLevel)
	viper.SetDefault("log_format", config.LogFormat)
	viper.SetDefault("data_dir", config.DataDir)
	viper.SetDefault("tcp_keepalive", config.TCPKeepAlive)
	viper.SetDefault("read_timeout", config.ReadTimeout)
	viper.SetDefault("write_timeout", config.WriteTimeout)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if onChange != nil {
		viper.OnConfigChange(func(e fsnotify.Event) {
			reloaded := DefaultConfig()
			if err := viper.Unmarshal(reloaded); err != nil {
				return
			}
			onChange(reloaded)
		})
		viper.WatchConfig()
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Port)
	}

	if c.MaxClients < 1 {
		return fmt.Errorf("max_clients must be at least 1")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	validLevel := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf("kvline Config: %s:%d, DataDir: %s, LogLevel: %s",
		c.Host, c.Port, c.DataDir, c.LogLevel)
}
