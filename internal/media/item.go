// Package media holds the playable item model shared by the queue, the
// stream negotiator and the playback controller.
package media

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Kind classifies an item for playback decisions.
type Kind int

const (
	KindNormal Kind = iota
	KindAudio
	KindLiveChannel
	KindTrailer
	KindVirtual // placeholder with no playable media (e.g. a missing episode)
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "Normal"
	case KindAudio:
		return "Audio"
	case KindLiveChannel:
		return "LiveChannel"
	case KindTrailer:
		return "Trailer"
	case KindVirtual:
		return "Virtual"
	default:
		return "Unknown"
	}
}

// Program is the broadcast currently airing on a live channel.
type Program struct {
	ID    string
	Name  string
	Start time.Time
	End   time.Time
}

// Item is a single entry the controller can play.
type Item struct {
	ID      uuid.UUID
	Name    string
	Kind    Kind
	RunTime time.Duration // 0 when unknown (live)

	// Audio metadata, used by scrobbling sinks.
	Artist string
	Album  string

	MediaSources []MediaSource

	// Item-level defaults, used when no media source declares one.
	DefaultAudioIndex    mo.Option[int]
	DefaultSubtitleIndex mo.Option[int]

	CurrentProgram *Program
	LastPlayed     time.Time
}

// IsLive reports whether the item is a live channel.
func (i *Item) IsLive() bool {
	return i != nil && i.Kind == KindLiveChannel
}

// IsPlaceholder reports whether the item has no playable media.
func (i *Item) IsPlaceholder() bool {
	return i != nil && i.Kind == KindVirtual
}

// Source returns the media source with the given id, or the first source
// when id is empty or unknown. Returns false if the item has no sources.
func (i *Item) Source(id string) (MediaSource, bool) {
	if i == nil || len(i.MediaSources) == 0 {
		return MediaSource{}, false
	}
	if id != "" {
		if src, ok := lo.Find(i.MediaSources, func(s MediaSource) bool { return s.ID == id }); ok {
			return src, true
		}
	}
	return i.MediaSources[0], true
}
