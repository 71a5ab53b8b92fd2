// internal/state/mock.go
package state

import (
	"sync"

	"github.com/google/uuid"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu       sync.Mutex
	language string
	last     uuid.UUID
	prev     uuid.UUID
	index    int
	pending  []PendingScrobble
	nextID   int64
	err      error
	closed   bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{index: -1}
}

func (m *Mock) LastAudioLanguage() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language, m.err
}

func (m *Mock) SaveLastAudioLanguage(lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.language = lang
	return nil
}

func (m *Mock) SaveLastChannel(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.last != id {
		m.prev, m.last = m.last, id
	}
	return nil
}

func (m *Mock) LastChannel() (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.err
}

func (m *Mock) PrevChannel() (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prev, m.err
}

func (m *Mock) SaveQueuePosition(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.index = index
	return nil
}

func (m *Mock) QueuePosition() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index, m.err
}

func (m *Mock) AddPendingScrobble(s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	s.ID = m.nextID
	m.pending = append(m.pending, s)
	return nil
}

func (m *Mock) GetPendingScrobbles() ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PendingScrobble(nil), m.pending...), m.err
}

func (m *Mock) DeletePendingScrobble(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pending {
		if p.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mock) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Attempts++
			m.pending[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// SetError makes every subsequent call fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
