// Package observability provides the structured logger shared by every
// binary.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/moonhowl/werewolfd/internal/config"
)

// NewLogger builds a zap logger from the logging configuration.
//
// Precondition: cfg.Level must parse as a zap level and cfg.Format must be
// "json" or "console".
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	base, err := baseConfig(cfg.Format)
	if err != nil {
		return nil, err
	}

	base.Level = zap.NewAtomicLevelAt(level)
	base.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := base.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// baseConfig returns the zap preset for the requested output format.
func baseConfig(format string) (zap.Config, error) {
	switch format {
	case "json":
		return zap.NewProductionConfig(), nil
	case "console":
		return zap.NewDevelopmentConfig(), nil
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}
}

// Sync flushes buffered log entries. Sync errors on stdout/stderr are
// expected on some platforms and ignored.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}
