package media

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// StreamType identifies the kind of elementary stream.
type StreamType int

const (
	StreamVideo StreamType = iota
	StreamAudio
	StreamSubtitle
)

// String returns the stream type name.
func (t StreamType) String() string {
	switch t {
	case StreamVideo:
		return "Video"
	case StreamAudio:
		return "Audio"
	case StreamSubtitle:
		return "Subtitle"
	default:
		return "Unknown"
	}
}

// SubtitleDelivery is how the server delivers a subtitle stream.
type SubtitleDelivery int

const (
	DeliveryUnknown SubtitleDelivery = iota
	DeliveryEncode                   // burned into the video by the server
	DeliveryEmbed
	DeliveryExternal
	DeliveryHLS
	DeliveryDrop
)

// String returns the delivery name.
func (d SubtitleDelivery) String() string {
	switch d {
	case DeliveryEncode:
		return "Encode"
	case DeliveryEmbed:
		return "Embed"
	case DeliveryExternal:
		return "External"
	case DeliveryHLS:
		return "Hls"
	case DeliveryDrop:
		return "Drop"
	default:
		return "Unknown"
	}
}

// IsBurnIn reports whether the server must render the subtitles into the video.
func (d SubtitleDelivery) IsBurnIn() bool {
	return d == DeliveryEncode
}

// MediaStream is one elementary stream of a media source.
type MediaStream struct {
	Index          int
	Type           StreamType
	Codec          string
	Language       string
	IsDefault      bool
	IsForced       bool
	DeliveryMethod SubtitleDelivery
}

// MediaSource is one playable version of an item.
type MediaSource struct {
	ID        string
	Container string
	RunTime   time.Duration

	MediaStreams []MediaStream

	DefaultAudioIndex    mo.Option[int]
	DefaultSubtitleIndex mo.Option[int]

	SupportsDirectPlay   bool
	SupportsDirectStream bool
	SupportsTranscoding  bool
}

// Stream returns the stream with the given index.
func (s MediaSource) Stream(index int) (MediaStream, bool) {
	return lo.Find(s.MediaStreams, func(ms MediaStream) bool { return ms.Index == index })
}

// Streams returns the streams of the given type, in source order.
func (s MediaSource) Streams(t StreamType) []MediaStream {
	return lo.Filter(s.MediaStreams, func(ms MediaStream, _ int) bool { return ms.Type == t })
}

// AudioByLanguage returns the first audio stream in the given language.
// Language comparison is case-insensitive; an empty language never matches.
func (s MediaSource) AudioByLanguage(lang string) (MediaStream, bool) {
	if lang == "" {
		return MediaStream{}, false
	}
	return lo.Find(s.MediaStreams, func(ms MediaStream) bool {
		return ms.Type == StreamAudio && strings.EqualFold(ms.Language, lang)
	})
}

// AudioAfterVideo returns the first audio stream that follows the first video
// stream in source order.
func (s MediaSource) AudioAfterVideo() (MediaStream, bool) {
	_, videoPos, ok := lo.FindIndexOf(s.MediaStreams, func(ms MediaStream) bool { return ms.Type == StreamVideo })
	if !ok {
		return MediaStream{}, false
	}
	return lo.Find(s.MediaStreams[videoPos+1:], func(ms MediaStream) bool { return ms.Type == StreamAudio })
}

// FirstAudio returns the first audio stream of the source.
func (s MediaSource) FirstAudio() (MediaStream, bool) {
	return lo.Find(s.MediaStreams, func(ms MediaStream) bool { return ms.Type == StreamAudio })
}
