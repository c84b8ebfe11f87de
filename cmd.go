package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	version = "1.0.0" // Set during build with -ldflags
	config  *Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "kvline",
	Short: "kvline - an in-memory key-value store with a RESP-inspired inline protocol",
	Long: `kvline is a small in-memory key-value store speaking a line-oriented,
RESP-inspired protocol over TCP: SET, GET, DELETE, FLUSH, MGET, MSET,
INCR, DBSIZE and KEYS, with optional per-key TTLs and an append-only
command log for durability.`,
	Version: version,
	RunE:    runServer,
}

// runServer starts the kvline server and blocks until a shutdown signal
// arrives.
func runServer(cmd *cobra.Command, args []string) error {
	var err error
	config, err = LoadConfig(func(reloaded *Config) {
		applyLogLevel(reloaded.LogLevel)
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(config.LogFormat, config.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting kvline",
		zap.String("version", version),
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("data_dir", config.DataDir),
		zap.String("log_level", config.LogLevel),
	)

	server := NewGoFastServer(log)
	server.SetConfig(config)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	startErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			startErr <- err
		}
	}()

	select {
	case err := <-startErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-sigChan:
	}

	log.Info("shutting down kvline")
	if err := server.Stop(); err != nil {
		log.Error("error during shutdown", zap.Error(err))
		return err
	}
	log.Info("kvline stopped")

	return nil
}

// configCmd shows current configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(nil)
		if err != nil {
			return err
		}
		fmt.Println("kvline Configuration:")
		fmt.Println(strings.Repeat("=", 31))
		fmt.Printf("Host: %s\n", config.Host)
		fmt.Printf("Port: %d\n", config.Port)
		fmt.Printf("Max Clients: %d\n", config.MaxClients)
		fmt.Printf("Timeout: %v\n", config.Timeout)
		fmt.Printf("Log Level: %s\n", config.LogLevel)
		fmt.Printf("Log Format: %s\n", config.LogFormat)
		fmt.Printf("Data Directory: %s\n", config.DataDir)
		fmt.Printf("TCP Keep-Alive: %t\n", config.TCPKeepAlive)
		fmt.Printf("Read Timeout: %v\n", config.ReadTimeout)
		fmt.Printf("Write Timeout: %v\n", config.WriteTimeout)

		return nil
	},
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kvline v%s\n", version)
		fmt.Printf("Built with Go %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("host", "H", "127.0.0.1", "Host to bind to")
	rootCmd.PersistentFlags().IntP("port", "p", 1234, "Port to listen on")
	rootCmd.PersistentFlags().Int("max-clients", 10000, "Maximum number of concurrent clients")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Client timeout")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("data-dir", ".", "Data directory for the append-only file")
	rootCmd.PersistentFlags().Bool("tcp-keepalive", true, "Enable TCP keep-alive")
	rootCmd.PersistentFlags().Duration("read-timeout", 30*time.Second, "Read timeout")
	rootCmd.PersistentFlags().Duration("write-timeout", 30*time.Second, "Write timeout")

	// Bind flags to viper
	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("max_clients", rootCmd.PersistentFlags().Lookup("max-clients"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("tcp_keepalive", rootCmd.PersistentFlags().Lookup("tcp-keepalive"))
	viper.BindPFlag("read_timeout", rootCmd.PersistentFlags().Lookup("read-timeout"))
	viper.BindPFlag("write_timeout", rootCmd.PersistentFlags().Lookup("write-timeout"))

	// Add subcommands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the main entry point for the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
