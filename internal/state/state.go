// Package state persists the playback session across runs in sqlite.
package state

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "lumen"
	dbFileName   = "session.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db     *sql.DB
	logger logrus.FieldLogger
	now    func() time.Time

	writeMu   sync.Mutex // serializes flushes with Close
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *int // queue position waiting to be written
}

// Open opens the session database at path, or under the XDG data directory
// when path is empty.
func Open(path string, logger logrus.FieldLogger) (*Manager, error) {
	if path == "" {
		p, err := getDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	return open(path, logger)
}

func open(dsn string, logger logrus.FieldLogger) (*Manager, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Manager{db: db, logger: logger, now: time.Now}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveMu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.flush() // pending state
	return m.db.Close()
}

// flush writes the pending queue position. Callers hold writeMu.
func (m *Manager) flush() {
	m.saveMu.Lock()
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending == nil {
		return
	}
	if err := saveQueuePosition(context.Background(), m.db, *pending, m.now()); err != nil {
		m.logger.WithError(err).WithField("index", *pending).Warn("save queue position")
	}
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
