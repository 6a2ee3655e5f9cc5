// Package logging builds the logrus loggers used by the example binaries.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, format and destination of a logger.
type Config struct {
	Level      string
	JSON       bool
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// New builds a logger from cfg. When the log file cannot be prepared the
// logger falls back to stderr and records a warning. The returned closer
// releases the log file and must be closed once logging is done; it is a no-op
// for stderr.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}

	output, closer, outErr := buildOutput(cfg)

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if outErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.FilePath,
		}).Warn(outErr.Error())
	}
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildOutput returns a rotating file writer, or stderr when no file is
// configured or the directory cannot be created.
func buildOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.FilePath == "" {
		return os.Stderr, nopCloser{}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stderr, nopCloser{}, fmt.Errorf("logging: create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
	return rotator, rotator, nil
}
