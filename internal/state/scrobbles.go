package state

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	dbutil "github.com/llehouerou/lumen/internal/db"
)

// PendingScrobble represents a scrobble queued for retry.
type PendingScrobble struct {
	ID           int64
	ItemID       uuid.UUID
	Artist       string
	Track        string
	Album        string
	DurationSecs int
	Timestamp    time.Time
	Attempts     int
	LastError    string
	CreatedAt    time.Time
}

// AddPendingScrobble queues a scrobble for later submission.
func (m *Manager) AddPendingScrobble(s PendingScrobble) error {
	_, err := m.db.Exec(`
		INSERT INTO pending_scrobbles
		(item_id, artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, s.ItemID.String(), s.Artist, s.Track, dbutil.NullString(s.Album), s.DurationSecs,
		s.Timestamp.Unix(), dbutil.NullString(s.LastError), m.now().Unix())
	return err
}

// GetPendingScrobbles returns all pending scrobbles ordered by creation time.
func (m *Manager) GetPendingScrobbles() ([]PendingScrobble, error) {
	rows, err := m.db.Query(`
		SELECT id, item_id, artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at
		FROM pending_scrobbles
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scrobbles []PendingScrobble
	for rows.Next() {
		var s PendingScrobble
		var itemID, album, lastError sql.NullString
		var timestamp, createdAt sql.NullInt64

		err := rows.Scan(
			&s.ID, &itemID, &s.Artist, &s.Track, &album, &s.DurationSecs,
			&timestamp, &s.Attempts, &lastError, &createdAt,
		)
		if err != nil {
			return nil, err
		}

		s.ItemID = dbutil.NullUUIDValue(itemID)
		s.Album = dbutil.NullStringValue(album)
		s.LastError = dbutil.NullStringValue(lastError)
		s.Timestamp = dbutil.UnixTime(timestamp)
		s.CreatedAt = dbutil.UnixTime(createdAt)

		scrobbles = append(scrobbles, s)
	}

	return scrobbles, rows.Err()
}

// DeletePendingScrobble removes a successfully submitted scrobble.
func (m *Manager) DeletePendingScrobble(id int64) error {
	_, err := m.db.Exec(`DELETE FROM pending_scrobbles WHERE id = ?`, id)
	return err
}

// UpdatePendingScrobbleAttempt increments attempt count and sets error message.
func (m *Manager) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	_, err := m.db.Exec(`
		UPDATE pending_scrobbles
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, errMsg, id)
	return err
}

// DeleteOldPendingScrobbles removes pending scrobbles older than maxAge.
func (m *Manager) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	cutoff := m.now().Add(-maxAge).Unix()
	_, err := m.db.Exec(`DELETE FROM pending_scrobbles WHERE created_at < ?`, cutoff)
	return err
}
