// Package streamplan negotiates how an item is streamed: which media source,
// which play method and which audio/subtitle tracks the server should serve.
package streamplan

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/llehouerou/lumen/internal/media"
)

// SubtitleNone is the explicit "no subtitles" index.
const SubtitleNone = -1

// PlayMethod is how the server delivers the media.
type PlayMethod int

const (
	DirectPlay PlayMethod = iota
	DirectStream
	Transcode
)

// String returns the play method name.
func (m PlayMethod) String() string {
	switch m {
	case DirectPlay:
		return "DirectPlay"
	case DirectStream:
		return "DirectStream"
	case Transcode:
		return "Transcode"
	default:
		return "Unknown"
	}
}

// Options is a negotiation request. Absent track indices let the server pick.
type Options struct {
	ItemID        uuid.UUID
	MediaSourceID string

	AudioIndex    mo.Option[int]
	SubtitleIndex mo.Option[int]

	EnableDirectPlay   bool
	EnableDirectStream bool
	MaxAudioChannels   int
}

// Plan is the negotiated way to play an item.
type Plan struct {
	ItemID           uuid.UUID
	MediaSource      media.MediaSource
	PlayMethod       PlayMethod
	Container        string
	SubtitleDelivery media.SubtitleDelivery
	AudioIndex       mo.Option[int]
	SubtitleIndex    mo.Option[int]
	MediaURL         string
	PlaySessionID    string

	// Options the plan was negotiated with.
	Options Options
}

// IsTranscoding reports whether the server is re-encoding the media.
func (p *Plan) IsTranscoding() bool {
	return p != nil && p.PlayMethod == Transcode
}

// Service is the remote side of negotiation.
type Service interface {
	GetStreamPlan(ctx context.Context, item *media.Item, opts Options, start media.Ticks) (*Plan, error)
	// ChangeStream replaces a running plan, stopping any server-side encoding
	// it started.
	ChangeStream(ctx context.Context, current *Plan, opts Options, start media.Ticks) (*Plan, error)
}

// ChoosePlayMethod picks the least expensive method both the options and the
// source allow. Returns false if the source cannot be played at all.
func ChoosePlayMethod(opts Options, src media.MediaSource) (PlayMethod, bool) {
	switch {
	case opts.EnableDirectPlay && src.SupportsDirectPlay:
		return DirectPlay, true
	case opts.EnableDirectStream && src.SupportsDirectStream:
		return DirectStream, true
	case src.SupportsTranscoding:
		return Transcode, true
	default:
		return 0, false
	}
}
