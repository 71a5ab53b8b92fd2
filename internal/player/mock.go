// internal/player/mock.go
package player

import (
	"sync"
	"time"

	"github.com/llehouerou/lumen/internal/media"
)

// TrackCall records a SetTrack invocation.
type TrackCall struct {
	Index int
	Type  media.StreamType
}

// Mock is a test double for Engine.
type Mock struct {
	mu sync.Mutex

	listener    Listener
	playing     bool
	initialized bool
	seekable    bool
	released    bool
	position    time.Duration
	duration    time.Duration
	buffered    time.Duration
	speed       float64
	tracks      map[media.StreamType]int
	setTrackOK  bool
	seekErr     error
	sourceErr   error

	sourceCalls []Source
	seekCalls   []time.Duration
	trackCalls  []TrackCall
	startCalls  int
	pauseCalls  int
	stopCalls   int
}

// NewMock creates an initialized, seekable mock engine.
func NewMock() *Mock {
	return &Mock{
		initialized: true,
		seekable:    true,
		speed:       1.0,
		setTrackOK:  true,
		tracks:      map[media.StreamType]int{media.StreamAudio: -1, media.StreamSubtitle: -1},
	}
}

func (m *Mock) SetSource(src Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceCalls = append(m.sourceCalls, src)
	return m.sourceErr
}

func (m *Mock) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	m.playing = true
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.playing = false
}

func (m *Mock) StopPlayback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.playing = false
}

func (m *Mock) SeekTo(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = pos
	return nil
}

func (m *Mock) IsSeekable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seekable
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) BufferedPosition() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffered
}

func (m *Mock) SetPlaybackSpeed(speed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
}

func (m *Mock) TrackIndex(t media.StreamType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.tracks[t]; ok {
		return idx
	}
	return -1
}

func (m *Mock) SetTrack(index int, t media.StreamType) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackCalls = append(m.trackCalls, TrackCall{Index: index, Type: t})
	if !m.setTrackOK {
		return false
	}
	m.tracks[t] = index
	return true
}

func (m *Mock) SetListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
	m.playing = false
}

// Test helpers

func (m *Mock) SetSeekable(v bool) { m.with(func() { m.seekable = v }) }

func (m *Mock) SetInitialized(v bool) { m.with(func() { m.initialized = v }) }

func (m *Mock) SetPlaying(v bool) { m.with(func() { m.playing = v }) }

func (m *Mock) SetPosition(d time.Duration) { m.with(func() { m.position = d }) }

func (m *Mock) SetDuration(d time.Duration) { m.with(func() { m.duration = d }) }

func (m *Mock) SetBuffered(d time.Duration) { m.with(func() { m.buffered = d }) }

func (m *Mock) SetSeekError(err error) { m.with(func() { m.seekErr = err }) }

func (m *Mock) SetSourceError(err error) { m.with(func() { m.sourceErr = err }) }

func (m *Mock) SetTrackResult(ok bool) { m.with(func() { m.setTrackOK = ok }) }

func (m *Mock) SetSelectedTrack(t media.StreamType, index int) {
	m.with(func() { m.tracks[t] = index })
}

func (m *Mock) SourceCalls() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.sourceCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) TrackCalls() []TrackCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TrackCall(nil), m.trackCalls...)
}

func (m *Mock) StartCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) Speed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// SimulatePrepared delivers OnPrepared to the listener.
func (m *Mock) SimulatePrepared() {
	if l := m.currentListener(); l != nil {
		l.OnPrepared()
	}
}

// SimulateError delivers OnError to the listener.
func (m *Mock) SimulateError(err error) {
	if l := m.currentListener(); l != nil {
		l.OnError(err)
	}
}

// SimulateCompletion delivers OnCompletion to the listener.
func (m *Mock) SimulateCompletion() {
	if l := m.currentListener(); l != nil {
		l.OnCompletion()
	}
}

// SimulateProgress delivers OnProgress to the listener.
func (m *Mock) SimulateProgress() {
	if l := m.currentListener(); l != nil {
		l.OnProgress()
	}
}

func (m *Mock) currentListener() Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listener
}

func (m *Mock) with(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Verify Mock implements Engine at compile time.
var _ Engine = (*Mock)(nil)
