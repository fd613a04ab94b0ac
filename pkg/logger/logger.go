package logger

import (
	"io"
	"os"

	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/charmbracelet/log"
)

var logger *log.Logger

// Init initializes the logger. verbose forces debug level regardless of
// log.level.
func Init(verbose bool) {
	logLevel, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err == nil {
			out = f
		}
	}

	SetOutput(out, logLevel)
}

// SetOutput replaces the logger with one writing to w at the given level.
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// With returns a logger prefixed with a component name. It falls back to a
// discarding logger before Init.
func With(component string) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger.WithPrefix(component)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}

// GetLogger returns the logger instance, nil before Init.
func GetLogger() *log.Logger {
	return logger
}
