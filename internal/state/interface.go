// internal/state/interface.go
package state

import (
	"github.com/google/uuid"
)

// Interface is the session store the rest of the module depends on.
type Interface interface {
	LastAudioLanguage() (string, error)
	SaveLastAudioLanguage(lang string) error
	SaveLastChannel(id uuid.UUID) error
	LastChannel() (uuid.UUID, error)
	PrevChannel() (uuid.UUID, error)
	SaveQueuePosition(index int) error
	QueuePosition() (int, error)
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles() ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
