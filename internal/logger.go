package internal

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logMu    sync.RWMutex
	logLevel = LogLevelInfo
	logger   = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	logLevel = level
	logMu.Unlock()
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// StdLogger exposes the underlying sink for libraries that want a Printf logger.
func StdLogger() *log.Logger {
	return logger
}

func enabled(level LogLevel) bool {
	logMu.RLock()
	defer logMu.RUnlock()
	return logLevel >= level
}

func output(level LogLevel, tag, prefix, format string, args ...interface{}) {
	if !enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if prefix != "" {
		msg = prefix + ": " + msg
	}
	logger.Printf("[%s] %s", tag, msg)
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	output(LogLevelError, "ERROR", "", format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	output(LogLevelWarn, "WARN", "", format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	output(LogLevelInfo, "INFO", "", format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	output(LogLevelDebug, "DEBUG", "", format, args...)
}

// Logger writes levelled messages tagged with a component name.
type Logger struct {
	component string
}

// NewLogger returns a logger that prefixes every message with component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) prefix() string {
	if l == nil {
		return ""
	}
	return l.component
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	output(LogLevelError, "ERROR", l.prefix(), format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) {
	output(LogLevelWarn, "WARN", l.prefix(), format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	output(LogLevelInfo, "INFO", l.prefix(), format, args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	output(LogLevelDebug, "DEBUG", l.prefix(), format, args...)
}
