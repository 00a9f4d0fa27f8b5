package scheduler

import "log"

// Logger receives one-line diagnostics. A nil Logger discards them.
type Logger interface {
	Log(msg string)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(msg string)

// Log calls f(msg).
func (f LoggerFunc) Log(msg string) { f(msg) }

// StdLogger writes to a standard library logger.
type StdLogger struct {
	L *log.Logger
}

// Log prints msg on its own line. A nil L uses the standard logger.
func (s StdLogger) Log(msg string) {
	if s.L == nil {
		log.Print(msg)
		return
	}
	s.L.Print(msg)
}
