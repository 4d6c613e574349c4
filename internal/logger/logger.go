package logger

import (
	"strings"
)

type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger provides structured logging tagged with the emitting component
type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
	Info(component string, message string, fields map[string]interface{})
	Warning(component string, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// ParseLevel maps a configuration string onto a LogLevel, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// NoOpLogger discards everything. Used by tests and headless tooling.
type NoOpLogger struct{}

func (NoOpLogger) Debug(component string, message string, fields map[string]interface{})   {}
func (NoOpLogger) Info(component string, message string, fields map[string]interface{})    {}
func (NoOpLogger) Warning(component string, message string, fields map[string]interface{}) {}
func (NoOpLogger) Error(component string, err error, fields map[string]interface{})        {}

// Nop returns a Logger that discards all output
func Nop() Logger {
	return NoOpLogger{}
}
