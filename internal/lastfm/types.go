package lastfm

import (
	"time"

	"github.com/llehouerou/lumen/internal/media"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist      string
	Track       string
	Album       string
	AlbumArtist string
	Duration    time.Duration
	Timestamp   time.Time // When playback started
}

// trackFromItem builds the scrobble payload for an audio item. It returns
// false for items Last.fm would reject.
func trackFromItem(item *media.Item, started time.Time) (ScrobbleTrack, bool) {
	if item == nil || item.Kind != media.KindAudio || item.Artist == "" || item.Name == "" {
		return ScrobbleTrack{}, false
	}
	return ScrobbleTrack{
		Artist:    item.Artist,
		Track:     item.Name,
		Album:     item.Album,
		Duration:  item.RunTime,
		Timestamp: started,
	}, true
}

// scrobbleState tracks the scrobbling status of the item being played.
type scrobbleState struct {
	track     ScrobbleTrack
	scrobbled bool
	// stopped holds the state until the item restarts mid-track.
	stopped bool
}
