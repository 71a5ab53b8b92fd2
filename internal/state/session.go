package state

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	dbutil "github.com/llehouerou/lumen/internal/db"
)

type session struct {
	audioLanguage string
	lastChannel   uuid.UUID
	prevChannel   uuid.UUID
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getSession(q rowQuerier) (session, error) {
	var lang, last, prev sql.NullString
	err := q.QueryRow(`
		SELECT audio_language, last_channel, prev_channel FROM session_state WHERE id = 1
	`).Scan(&lang, &last, &prev)
	if errors.Is(err, sql.ErrNoRows) {
		return session{}, nil
	}
	if err != nil {
		return session{}, err
	}
	return session{
		audioLanguage: dbutil.NullStringValue(lang),
		lastChannel:   dbutil.NullUUIDValue(last),
		prevChannel:   dbutil.NullUUIDValue(prev),
	}, nil
}

// LastAudioLanguage returns the audio language of the last played item, or
// "" if none was recorded.
func (m *Manager) LastAudioLanguage() (string, error) {
	s, err := getSession(m.db)
	return s.audioLanguage, err
}

// SaveLastAudioLanguage records the audio language picked for an item.
func (m *Manager) SaveLastAudioLanguage(lang string) error {
	_, err := m.db.Exec(`
		INSERT INTO session_state (id, audio_language, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			audio_language = excluded.audio_language,
			updated_at = excluded.updated_at
	`, dbutil.NullString(lang), m.now().Unix())
	return err
}

// SaveLastChannel records id as the last tuned channel. The channel it
// replaces becomes the previous one; tuning the same channel again keeps the
// previous channel as it was.
func (m *Manager) SaveLastChannel(id uuid.UUID) error {
	return dbutil.WithTx(context.Background(), m.db, func(tx *sql.Tx) error {
		s, err := getSession(tx)
		if err != nil {
			return err
		}
		if s.lastChannel == id {
			return nil
		}
		_, err = tx.Exec(`
			INSERT INTO session_state (id, last_channel, prev_channel, updated_at)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				last_channel = excluded.last_channel,
				prev_channel = excluded.prev_channel,
				updated_at = excluded.updated_at
		`, dbutil.NullUUID(id), dbutil.NullUUID(s.lastChannel), m.now().Unix())
		return err
	})
}

// LastChannel returns the last tuned channel, or uuid.Nil.
func (m *Manager) LastChannel() (uuid.UUID, error) {
	s, err := getSession(m.db)
	return s.lastChannel, err
}

// PrevChannel returns the channel tuned before the last one, or uuid.Nil.
func (m *Manager) PrevChannel() (uuid.UUID, error) {
	s, err := getSession(m.db)
	return s.prevChannel, err
}
