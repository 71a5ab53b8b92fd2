// internal/player/interface.go
package player

import (
	"time"

	"github.com/llehouerou/lumen/internal/media"
)

// Source is the media handed to the render engine.
type Source struct {
	URL        string
	Container  string
	Transcoded bool
}

// Listener receives render engine callbacks. Callbacks may arrive on any
// goroutine.
type Listener interface {
	OnPrepared()
	OnError(err error)
	OnCompletion()
	OnProgress()
}

// Engine is the contract the playback controller drives. The engine renders
// media; the controller owns all playback decisions.
type Engine interface {
	SetSource(src Source) error
	Start()
	Pause()
	StopPlayback()
	SeekTo(pos time.Duration) error
	IsSeekable() bool
	IsPlaying() bool
	IsInitialized() bool

	Position() time.Duration
	Duration() time.Duration
	BufferedPosition() time.Duration

	SetPlaybackSpeed(speed float64)
	// TrackIndex returns the selected track of the given type, or -1.
	TrackIndex(t media.StreamType) int
	// SetTrack selects a track in place. Returns false if the engine cannot
	// switch without a new source.
	SetTrack(index int, t media.StreamType) bool

	SetListener(l Listener)
	Release()
}
