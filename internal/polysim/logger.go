package polysim

// Logger is the logging interface injected into the engine. The core
// never logs on its own package-level state; callers supply an
// implementation or get the no-op default.
type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// NoOpLogger discards everything. Useful for tests and for callers that
// do not care about engine diagnostics.
type NoOpLogger struct{}

func (n *NoOpLogger) Debugf(format string, v ...any) {}
func (n *NoOpLogger) Infof(format string, v ...any)  {}
func (n *NoOpLogger) Warnf(format string, v ...any)  {}
func (n *NoOpLogger) Errorf(format string, v ...any) {}

// NewNoOpLogger creates a no-op logger.
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}
