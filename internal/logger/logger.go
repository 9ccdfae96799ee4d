package logger

import (
	"log"
	"os"
)

// Logger is a prefixed logger shared by the server components.
type Logger struct {
	*log.Logger
}

// New creates a logger writing to stdout with the given prefix.
func New(prefix string) *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, prefix+" ", log.LstdFlags),
	}
}

// WithContext returns a child logger with an additional bracketed context.
func (l *Logger) WithContext(context string) *Logger {
	return &Logger{
		Logger: log.New(l.Writer(), l.Prefix()+"["+context+"] ", l.Flags()),
	}
}
