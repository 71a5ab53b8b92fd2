package playback

import "github.com/llehouerou/lumen/internal/media"

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// ItemChange is emitted when playback starts on a different item.
//
// Emitted by:
//   - Play: when the item being played differs from the last started item
//   - Next/Prev: through the Play they trigger
//
// NOT emitted by:
//   - Retries and stream rebuilds of the same item
//   - Next up handoff: the cursor moves but nothing starts
type ItemChange struct {
	Previous *media.Item
	Current  *media.Item
	Index    int
}

// NoticeKind tells the host what a user-facing notice is about.
type NoticeKind int

const (
	NoticeCannotPlay NoticeKind = iota
	NoticeNegotiationFailed
	NoticeRetrying
	NoticeTooManyErrors
	NoticeLiveStreamError
	NoticeSeekFailed
	NoticeStreamError
)

// Notice is a message the host should surface to the user.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// NextUp is emitted when an item finished and the host should offer the
// following one. The cursor already points at Item.
type NextUp struct {
	Item media.Item
}

// MissingMedia is emitted instead of playing a placeholder item with no
// media. HasNext tells whether the host can skip past it.
type MissingMedia struct {
	Item    media.Item
	HasNext bool
}

// EndReason explains why playback ended.
type EndReason int

const (
	EndQueueFinished EndReason = iota
	EndCannotPlay
	EndNegotiationFailed
	EndTooManyErrors
)

func (r EndReason) String() string {
	switch r {
	case EndQueueFinished:
		return "queue finished"
	case EndCannotPlay:
		return "cannot play"
	case EndNegotiationFailed:
		return "negotiation failed"
	case EndTooManyErrors:
		return "too many errors"
	default:
		return "unknown"
	}
}

// Ended signals the host to close the playback surface.
type Ended struct {
	Reason EndReason
}
