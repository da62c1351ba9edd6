package platform

// Logger defines the interface for platform logging.
// The platform uses structured logging with key-value pairs to provide
// consistent, parseable log output across the container, the registry, and
// every module.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
//
// This shape is compatible with popular structured logging libraries like
// slog, zap, and others; see the logging package for ready-made adapters.
type Logger interface {
	// Debug logs fine-grained events such as individual token resolves.
	Debug(msg string, args ...any)

	// Info logs normal platform events like module initialization and
	// service registration.
	Info(msg string, args ...any)

	// Warn logs conditions that do not stop bootstrap but should be noted,
	// such as a disabled module being skipped.
	Warn(msg string, args ...any)

	// Error logs failures, including module bootstrap failures and
	// lifecycle hook errors.
	Error(msg string, args ...any)
}

// noopLogger discards everything. It backs containers constructed without
// WithLogger so resolve paths never have to nil-check.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards all output.
func NopLogger() Logger { return noopLogger{} }
