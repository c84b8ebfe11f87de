package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logLevel holds the process-wide log level as a zap.AtomicLevel so a
// config hot-reload can raise or lower verbosity without restarting.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// newLogger builds the structured logger for the given format ("json" for
// zap's production encoding, anything else for its development console
// encoding), wired to the shared atomic level.
func newLogger(format, level string) (*zap.Logger, error) {
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = logLevel

	return cfg.Build()
}

// applyLogLevel updates the shared atomic level in place, the effect of a
// config file change picked up by fsnotify.
func applyLogLevel(level string) {
	_ = logLevel.UnmarshalText([]byte(level))
}
