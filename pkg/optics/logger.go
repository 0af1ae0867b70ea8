package optics

// Logger is the interface used across the engine for progress diagnostics
type Logger interface {
	Printf(format string, args ...interface{})
}

// NopLogger discards all output. It is the default for library callers that
// do not want fitting diagnostics.
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(format string, args ...interface{}) {}
