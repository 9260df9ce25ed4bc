// Package trigger implements an in-process event trigger and dispatch engine.
package trigger

// Logger defines the structured logging interface consumed throughout the
// engine. It uses variadic key-value pairs so any of slog, zap, or logrus
// can sit behind it without an adapter layer.
//
// Example implementation using go.uber.org/zap (the shape of the logger
// returned by NewZapLogger; NewEngine itself discards logs when no logger is
// supplied):
//
//	type zapLogger struct{ s *zap.SugaredLogger }
//
//	func (l *zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
//	func (l *zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
//	func (l *zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
//	func (l *zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
type Logger interface {
	// Info logs a normal operational event: trigger registered or
	// unregistered, registry cleared, config reloaded.
	Info(msg string, args ...any)

	// Error logs a contained fault: a predicate or action that panicked or
	// returned an error. Errors logged here are never surfaced to Emit's
	// caller.
	Error(msg string, args ...any)

	// Warn logs a condition that doesn't prevent dispatch but deserves
	// attention, such as a failed observer notification.
	Warn(msg string, args ...any)

	// Debug logs fine-grained tracing: triggers skipped by their condition,
	// emits with no registered triggers.
	Debug(msg string, args ...any)
}

// nopLogger discards everything. Used as the default when NewEngine is
// called with a nil Logger, so callers never need to nil-check.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
