package streamplan

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/media"
)

// LanguageStore remembers the audio language of the last played item.
type LanguageStore interface {
	LastAudioLanguage() (string, error)
	SaveLastAudioLanguage(lang string) error
}

// Request describes the playback attempt options are built for.
type Request struct {
	Item *media.Item
	// Previous holds the options of the plan being replaced, nil on a cold start.
	Previous *Options
	// Retries is the number of render errors already seen in this session.
	Retries int
	// LiveDirectStream allows direct streaming of live channels.
	LiveDirectStream  bool
	PreferredLanguage string
	ForcedSubtitle    mo.Option[int]
	MaxAudioChannels  int
}

// Negotiator builds negotiation options and turns server responses into
// playable plans.
type Negotiator struct {
	service   Service
	languages LanguageStore
	logger    logrus.FieldLogger
}

// New creates a negotiator backed by the given service.
func New(service Service, languages LanguageStore, logger logrus.FieldLogger) *Negotiator {
	return &Negotiator{service: service, languages: languages, logger: logger}
}

// BuildOptions derives the options for a playback attempt.
//
// Capabilities weaken as retries accumulate: any retry disables direct
// streaming and a second retry disables direct play. Live channels never
// direct stream unless explicitly allowed.
func (n *Negotiator) BuildOptions(req Request) Options {
	item := req.Item
	live := item.IsLive()

	opts := Options{
		ItemID:             item.ID,
		EnableDirectPlay:   req.Retries < 2,
		EnableDirectStream: req.Retries == 0 && (!live || req.LiveDirectStream),
		MaxAudioChannels:   req.MaxAudioChannels,
	}
	sourceID := ""
	if req.Previous != nil {
		opts.AudioIndex = req.Previous.AudioIndex
		opts.SubtitleIndex = req.Previous.SubtitleIndex
		sourceID = req.Previous.MediaSourceID
	}
	if req.ForcedSubtitle.IsPresent() {
		opts.SubtitleIndex = req.ForcedSubtitle
	}

	src, ok := item.Source(sourceID)
	if !ok {
		return opts
	}
	if !live {
		opts.MediaSourceID = src.ID
	}
	if opts.AudioIndex.IsAbsent() {
		if stream, found := SelectAudio(src, req.PreferredLanguage, n.lastLanguage()); found {
			opts.AudioIndex = mo.Some(stream.Index)
			n.rememberLanguage(stream.Language)
		}
	}
	return opts
}

// SelectAudio picks an audio stream in order of preference: the preferred
// language, the last played language, the first audio stream after the first
// video stream, then the first audio stream.
func SelectAudio(src media.MediaSource, preferred, lastPlayed string) (media.MediaStream, bool) {
	if s, ok := src.AudioByLanguage(preferred); ok {
		return s, true
	}
	if s, ok := src.AudioByLanguage(lastPlayed); ok {
		return s, true
	}
	if s, ok := src.AudioAfterVideo(); ok {
		return s, true
	}
	return src.FirstAudio()
}

// Negotiate requests a plan for item starting at position.
func (n *Negotiator) Negotiate(ctx context.Context, item *media.Item, opts Options, position time.Duration) (*Plan, error) {
	start := media.ToTicks(position)
	return n.resolve(opts, func(o Options) (*Plan, error) {
		return n.service.GetStreamPlan(ctx, item, o, start)
	})
}

// Rebuild replaces a running plan at position, used when the engine cannot
// seek in place or a track change needs a new stream.
func (n *Negotiator) Rebuild(ctx context.Context, current *Plan, opts Options, position time.Duration) (*Plan, error) {
	start := media.ToTicks(position)
	return n.resolve(opts, func(o Options) (*Plan, error) {
		return n.service.ChangeStream(ctx, current, o, start)
	})
}

// RememberAudio records the language of the given audio stream.
func (n *Negotiator) RememberAudio(src media.MediaSource, index int) {
	if s, ok := src.Stream(index); ok {
		n.rememberLanguage(s.Language)
	}
}

func (n *Negotiator) resolve(opts Options, call func(Options) (*Plan, error)) (*Plan, error) {
	plan, err := call(opts)
	if err != nil && isAC3Failure(err) && opts.AudioIndex.IsPresent() {
		n.logger.WithError(err).WithField("audio", opts.AudioIndex.OrElse(-1)).
			Warn("audio track rejected, letting the server pick one")
		opts.AudioIndex = mo.None[int]()
		plan, err = call(opts)
	}
	if err != nil {
		return nil, classified(err)
	}

	if plan.MediaURL == "" {
		if !plan.SubtitleDelivery.IsBurnIn() || opts.SubtitleIndex.OrElse(0) == SubtitleNone {
			return nil, &Error{Kind: KindGeneric, Err: ErrNoMediaURL}
		}
		n.logger.Info("no stream with burned-in subtitles, retrying without subtitles")
		opts.SubtitleIndex = mo.Some(SubtitleNone)
		if plan, err = call(opts); err != nil {
			return nil, classified(err)
		}
		if plan.MediaURL == "" {
			return nil, &Error{Kind: KindGeneric, Err: fmt.Errorf("without subtitles: %w", ErrNoMediaURL)}
		}
	}

	plan.Options = opts
	if opts.SubtitleIndex.IsPresent() {
		plan.SubtitleIndex = opts.SubtitleIndex
	} else if plan.SubtitleIndex.IsAbsent() {
		plan.SubtitleIndex = plan.MediaSource.DefaultSubtitleIndex
	}
	if plan.AudioIndex.IsAbsent() {
		plan.AudioIndex = opts.AudioIndex
	}
	return plan, nil
}

func (n *Negotiator) lastLanguage() string {
	if n.languages == nil {
		return ""
	}
	lang, err := n.languages.LastAudioLanguage()
	if err != nil {
		n.logger.WithError(err).Debug("read last audio language")
		return ""
	}
	return lang
}

func (n *Negotiator) rememberLanguage(lang string) {
	if n.languages == nil || lang == "" {
		return
	}
	if err := n.languages.SaveLastAudioLanguage(lang); err != nil {
		n.logger.WithError(err).Warn("save last audio language")
	}
}
