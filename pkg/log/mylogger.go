// Package log is the leveled logger shared by the smartsearch commands.
// Output goes through the standard log package so the TUI can send it to a
// file while the terminal is taken.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Log level constants
const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]int{
	"TRACE": LevelTrace,
	"DEBUG": LevelDebug,
	"INFO":  LevelInfo,
	"WARN":  LevelWarn,
	"ERROR": LevelError,
}

// currentLevel holds the configured log level
var currentLevel = LevelInfo

type MyLoggerOptions struct {
	// if we output to stdout
	Stdout bool
	// Path of the file, if present log to it
	Path string
	// What level to log
	Level string
}

// ConfigureMyLogger routes the log output and sets the level. Unknown
// levels fall back to INFO.
func ConfigureMyLogger(options *MyLoggerOptions) error {
	writer := io.Discard

	if options.Path != "" {
		logfile, err := os.OpenFile(options.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", options.Path, err)
		}
		writer = logfile
		if options.Stdout {
			writer = io.MultiWriter(logfile, os.Stdout)
		}
	} else if options.Stdout {
		writer = os.Stdout
	}

	log.SetOutput(writer)
	currentLevel = ParseLevel(options.Level)
	return nil
}

// ParseLevel maps a level name to its constant, INFO when unknown
func ParseLevel(name string) int {
	if level, ok := levelNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return LevelInfo
}

// Enabled reports whether messages at level are written
func Enabled(level int) bool {
	return currentLevel <= level
}

func logf(level int, prefix, format string, v ...interface{}) {
	if currentLevel <= level {
		log.Printf(prefix+format, v...)
	}
}

// Trace logs a message at TRACE level
func Trace(format string, v ...interface{}) { logf(LevelTrace, "[TRACE] ", format, v...) }

// Debug logs a message at DEBUG level
func Debug(format string, v ...interface{}) { logf(LevelDebug, "[DEBUG] ", format, v...) }

// Info logs a message at INFO level
func Info(format string, v ...interface{}) { logf(LevelInfo, "[INFO] ", format, v...) }

// Warn logs a message at WARN level
func Warn(format string, v ...interface{}) { logf(LevelWarn, "[WARN] ", format, v...) }

// Error logs a message at ERROR level
func Error(format string, v ...interface{}) { logf(LevelError, "[ERROR] ", format, v...) }
