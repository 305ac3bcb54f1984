package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// InitializeLogger sets up file-based logging with the specified directory and level.
// Console output stays free for the CLI and the terminal view.
func InitializeLogger(logDir, logLevel string) (*logrus.Logger, error) {
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", logDir, err)
	}

	// Create log file with timestamp
	timestamp := time.Now().Format("2006-01-02T15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("algoviz-%s.log", timestamp))

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", logFile, err)
	}

	logger.SetOutput(file)

	logger.WithField("log_file", logFile).Info("Logger initialized")
	return logger, nil
}

// NewConsoleLogger logs to stderr, for headless commands
func NewConsoleLogger(logLevel string) (*logrus.Logger, error) {
	logger, err := newLogger(logLevel)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(os.Stderr)
	return logger, nil
}

func newLogger(logLevel string) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", logLevel, err)
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	return logger, nil
}
