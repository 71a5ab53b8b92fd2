package playback

import (
	"time"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/player"
)

// Service defines the playback controller contract.
type Service interface {
	player.Listener

	// Lifecycle
	Init(engine player.Engine)
	Close() error

	// Playback control
	Play(pos time.Duration)
	Pause()
	Stop()
	PlayPause()
	Seek(pos time.Duration, skipToNext bool)
	FastForward()
	Rewind()
	Next()
	Prev()
	RefreshStream()

	// Queue control (stops playback)
	SetItems(items []media.Item, start int)

	// Tracks and speed
	SwitchAudioStream(index int)
	SetSubtitleStream(index int)
	SetPlaybackSpeed(speed float64)

	// State queries
	State() State
	Position() time.Duration
	Duration() time.Duration
	BufferedPosition() time.Duration
	CurrentItem() *media.Item
	QueueIndex() int
	AudioStreamIndex() int
	SubtitleStreamIndex() int
	IsLive() bool
	IsTranscoding() bool
	CanSeek() bool
	HasNext() bool
	HasPrev() bool

	// Event subscription
	Subscribe() *Subscription
}

// Verify Controller implements Service at compile time.
var _ Service = (*Controller)(nil)
