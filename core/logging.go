package core

// Logger is the logging contract consumed throughout the client. Trailing
// args may carry structured context; a user Identity arg attaches the person
// to error reports where the implementation supports it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NopLogger discards everything; handy default for tests.
type NopLogger struct{}

var _ Logger = (*NopLogger)(nil)

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
