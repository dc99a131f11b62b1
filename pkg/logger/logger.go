// Package logger builds the zap loggers shared by every epubpress component.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Creates a production sugared logger tagged with the service name.
func New(service string) *zap.SugaredLogger {
	return NewWithLevel(service, "info", false)
}

// Creates a sugared logger at the given level ("debug", "info", "warn", "error").
// Development mode switches to the console encoder with colored levels.
// Unknown levels fall back to info.
func NewWithLevel(service, level string, development bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": service}

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}

	return log.Sugar()
}

// Returns a logger that discards everything. Used by tests and optional wiring.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
