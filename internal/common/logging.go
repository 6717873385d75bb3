package common

import (
	"fmt"
	"os"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarn
	LogError
	LogFatal
)

var logLevelNames = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogWarn:  "WARN",
	LogError: "ERROR",
	LogFatal: "FATAL",
}

// SafeLogger writes only to stderr. Never write to stdout from this
// process: stdout carries the LSP frames to the editor, and a stray log
// line there corrupts the stream.
type SafeLogger struct {
	prefix string
	level  LogLevel
}

// NewSafeLogger creates a new safe logger with the given component prefix.
func NewSafeLogger(prefix string) *SafeLogger {
	return &SafeLogger{
		prefix: prefix,
		level:  LogInfo,
	}
}

// SetLevel sets the minimum log level.
func (l *SafeLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *SafeLogger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")
	levelName := logLevelNames[level]
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(os.Stderr, "%s [%s] %s: %s\n", timestamp, levelName, l.prefix, message)
}

func (l *SafeLogger) Debug(format string, args ...interface{}) { l.log(LogDebug, format, args...) }
func (l *SafeLogger) Info(format string, args ...interface{})  { l.log(LogInfo, format, args...) }
func (l *SafeLogger) Warn(format string, args ...interface{})  { l.log(LogWarn, format, args...) }
func (l *SafeLogger) Error(format string, args ...interface{}) { l.log(LogError, format, args...) }

// Fatal logs at FATAL and exits the process. Reserved for startup-time
// configuration failures; runtime errors should flow up as values.
func (l *SafeLogger) Fatal(format string, args ...interface{}) {
	l.log(LogFatal, format, args...)
	os.Exit(1)
}

// Per-subsystem loggers, one per package cluster in this server.
var (
	BusLogger         = NewSafeLogger("bus")
	InterpreterLogger = NewSafeLogger("interpreter")
	IndexLogger       = NewSafeLogger("index")
	LSPLogger         = NewSafeLogger("lsp")
	CLILogger         = NewSafeLogger("cli")
)

// SetGlobalLevel applies level to every package-level logger; used by the
// CLI's --verbose flag.
func SetGlobalLevel(level LogLevel) {
	for _, l := range []*SafeLogger{BusLogger, InterpreterLogger, IndexLogger, LSPLogger, CLILogger} {
		l.SetLevel(level)
	}
}
