package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"ferry/internal/xdg"
)

// Logger is the global logger instance
var Logger *logrus.Logger

// Fields is an alias for logrus.Fields
type Fields = logrus.Fields

// init initializes the global logger
func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetLevel(logrus.InfoLevel)

	if os.Getenv("FERRY_ENV") == "production" {
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// SetLevel sets the logging level
func SetLevel(level string) {
	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "info":
		Logger.SetLevel(logrus.InfoLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
}

// teeFile is the open dated log file while a tee is active.
var teeFile *os.File

// TeeToDatedFile duplicates all log output into an append-only log file named
// after the current date, one file per day under the ferry logs directory.
// The tee stays active until CloseTee, so lines logged on the way out of a
// failing run still reach the file.
func TeeToDatedFile() error {
	return teeToDatedFileIn(xdg.LogsDir())
}

func teeToDatedFileIn(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("ferry-%s.log", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	teeFile = f
	Logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// CloseTee restores plain stdout output and closes the dated log file.
// Safe to call when no tee is active.
func CloseTee() {
	if teeFile == nil {
		return
	}
	Logger.SetOutput(os.Stdout)
	teeFile.Close()
	teeFile = nil
}

// WithFields returns a logger with additional fields
func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField adds a field to the logger
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError adds an error field to the logger
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// Info logs an info message
func Info(msg string) {
	Logger.Info(msg)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

// Debug logs a debug message
func Debug(msg string) {
	Logger.Debug(msg)
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

// Warn logs a warning message
func Warn(msg string) {
	Logger.Warn(msg)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

// Error logs an error message
func Error(msg string) {
	Logger.Error(msg)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
