package logging

import (
	"log/slog"
	"os"

	"github.com/provenhq/platform"
)

// Slog adapts a slog logger to the platform Logger interface.
type Slog struct {
	logger *slog.Logger
}

var _ platform.Logger = (*Slog)(nil)

// NewSlog wraps an existing slog logger.
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{logger: logger}
}

// NewText returns a text-handler slog logger writing to stdout, the usual
// choice for CLI tools and tests.
func NewText() *Slog {
	return &Slog{logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))}
}

// Debug logs at debug level with key-value pairs.
func (l *Slog) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs at info level with key-value pairs.
func (l *Slog) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs at warn level with key-value pairs.
func (l *Slog) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs at error level with key-value pairs.
func (l *Slog) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
