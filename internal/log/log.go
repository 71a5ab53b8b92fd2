// Package log builds the logrus logger shared by every component.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/config"
)

const appName = "lumen"

// New creates a logger from the logs section of the config. When file
// logging is enabled, output goes to a dated file under the XDG state
// directory (or cfg.Dir) and the returned closer releases it; otherwise
// output goes to stderr and the closer is a no-op.
func New(cfg config.LogsConfig) (*logrus.Logger, io.Closer, error) {
	return newAt(cfg, time.Now())
}

func newAt(cfg config.LogsConfig, now time.Time) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if !cfg.Write {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}

	path, err := logPath(cfg.Dir, now)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

func logPath(dir string, now time.Time) (string, error) {
	filename := now.Format("2006-01-02") + ".log"
	if dir == "" {
		path, err := xdg.StateFile(filepath.Join(appName, "logs", filename))
		if err != nil {
			return "", fmt.Errorf("resolve log path: %w", err)
		}
		return path, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	return filepath.Join(dir, filename), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
