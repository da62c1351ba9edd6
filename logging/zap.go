// Package logging provides ready-made adapters between the platform Logger
// interface and the logging libraries provenhq services actually run:
// zap in deployed environments, slog for tools and tests.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/provenhq/platform"
)

// Zap adapts a zap sugared logger to the platform Logger interface.
type Zap struct {
	sugar *zap.SugaredLogger
}

var _ platform.Logger = (*Zap)(nil)

// NewZap builds a zap-backed logger for the given environment: "production"
// gets zap's JSON production config, everything else the human-readable
// development config.
func NewZap(environment string) (*Zap, error) {
	var logger *zap.Logger
	var err error
	switch environment {
	case "production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("creating zap logger: %w", err)
	}
	return &Zap{sugar: logger.Sugar()}, nil
}

// WrapZap adapts an existing zap logger, for callers that build their own
// zap configuration.
func WrapZap(logger *zap.Logger) *Zap {
	return &Zap{sugar: logger.Sugar()}
}

// Debug logs at debug level with key-value pairs.
func (l *Zap) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs at info level with key-value pairs.
func (l *Zap) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs at warn level with key-value pairs.
func (l *Zap) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs at error level with key-value pairs.
func (l *Zap) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Sync flushes buffered log entries. Deferred in main before exit.
func (l *Zap) Sync() error {
	return l.sugar.Sync()
}
