// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackRetry Op = "resume playback"

	// Stream operations
	OpStreamNegotiate Op = "get playback info"
	OpStreamChange    Op = "change stream"
	OpStreamLive      Op = "play live stream"

	// Queue operations
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue position"

	// Live TV
	OpChannelLoad Op = "load channel"
	OpChannelSave Op = "save last channel"

	// Scrobbling
	OpScrobble   Op = "scrobble"
	OpNowPlaying Op = "update now playing"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Messages shown for playback outcomes that are not a single failed call.
const (
	MsgCannotPlay         = "Unable to play this item"
	MsgNotAllowed         = "Playback of this item is not allowed"
	MsgNoCompatibleStream = "No compatible stream is available for this item"
	MsgRateLimited        = "Too many active streams, try again later"
	MsgRetrying           = "Playback error, retrying"
	MsgTooManyErrors      = "Too many playback errors, giving up"
	MsgLiveStreamFallback = "Live stream failed, switching to transcoding"
	MsgVideoError         = "Video playback error"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
