package state

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// QueuePosition returns the saved queue index, or -1 if none was saved.
func (m *Manager) QueuePosition() (int, error) {
	m.saveMu.Lock()
	if m.pending != nil {
		index := *m.pending
		m.saveMu.Unlock()
		return index, nil
	}
	m.saveMu.Unlock()

	var index int
	err := m.db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return index, nil
}

// SaveQueuePosition schedules the queue index to be written. Rapid changes
// (skipping through a queue) are coalesced into one write; Close flushes the
// last one.
func (m *Manager) SaveQueuePosition(index int) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &index

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.writeMu.Lock()
		defer m.writeMu.Unlock()
		m.flush()
	})
	return nil
}

func saveQueuePosition(ctx context.Context, db *sql.DB, index int, at time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO queue_state (id, current_index, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_index = excluded.current_index,
			updated_at = excluded.updated_at
	`, index, at.Unix())
	return err
}
