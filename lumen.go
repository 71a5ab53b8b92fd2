// Package lumen wires the playback controller to its configuration, session
// store and desktop integrations. Hosts supply the media server client and
// the render engine; everything else comes from the user's config.
package lumen

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/config"
	"github.com/llehouerou/lumen/internal/errmsg"
	"github.com/llehouerou/lumen/internal/lastfm"
	"github.com/llehouerou/lumen/internal/livetv"
	"github.com/llehouerou/lumen/internal/log"
	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/mpris"
	"github.com/llehouerou/lumen/internal/notify"
	"github.com/llehouerou/lumen/internal/playback"
	"github.com/llehouerou/lumen/internal/player"
	"github.com/llehouerou/lumen/internal/playlist"
	"github.com/llehouerou/lumen/internal/state"
	"github.com/llehouerou/lumen/internal/streamplan"
)

// Re-exported so hosts do not import internal packages.
type (
	Item         = media.Item
	Engine       = player.Engine
	StreamServer = streamplan.Service
	ChannelStore = livetv.Source
	Reporter     = playback.Reporter
	State        = playback.State
	Subscription = playback.Subscription
)

const (
	scrobbleRetryInterval = 5 * time.Minute
	scrobbleMaxAge        = 14 * 24 * time.Hour // Last.fm rejects older plays
)

// ErrNoServer is returned by New when Options.Server is nil.
var ErrNoServer = errors.New("lumen: stream server is required")

// Options configures New. Server is required.
type Options struct {
	Server   StreamServer
	Channels ChannelStore // optional, enables live TV metadata
	Reporter Reporter     // optional, server-side progress reporting

	Config *config.Config      // nil loads the user's config files
	Logger logrus.FieldLogger // nil builds one from Config.Logs
}

// Player is a playback controller with its supporting services.
type Player struct {
	*playback.Controller

	cfg       *config.Config
	logger    logrus.FieldLogger
	logCloser io.Closer
	state     *state.Manager
	scrobbler *lastfm.Reporter
	channels  *livetv.Cache
	mpris     *mpris.Adapter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New builds a player. Call Start to attach a render engine.
func New(opts Options) (*Player, error) {
	if opts.Server == nil {
		return nil, ErrNoServer
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	p := &Player{cfg: cfg, logger: opts.Logger, logCloser: nopCloser{}}
	if p.logger == nil {
		logger, closer, err := log.New(cfg.Logs)
		if err != nil {
			return nil, err
		}
		p.logger, p.logCloser = logger, closer
	}

	st, err := state.Open(cfg.StatePath, p.logger)
	if err != nil {
		p.logCloser.Close()
		return nil, err
	}
	p.state = st

	reporters := playback.MultiReporter{}
	if opts.Reporter != nil {
		reporters = append(reporters, opts.Reporter)
	}
	if cfg.HasLastfmConfig() {
		client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret, cfg.Lastfm.SessionKey)
		p.scrobbler = lastfm.NewReporter(client, st, p.logger.WithField("component", "lastfm"))
		reporters = append(reporters, p.scrobbler)
	}

	ctrl := playback.Config{
		Queue:       playlist.NewQueue(),
		Negotiator:  streamplan.New(opts.Server, st, p.logger.WithField("component", "streamplan")),
		Reporter:    reporters,
		Preferences: cfg.Preferences(),
		Sessions:    st,
		Logger:      p.logger.WithField("component", "playback"),
	}
	if opts.Channels != nil {
		p.channels = livetv.NewCache(opts.Channels,
			livetv.WithTTL(cfg.ChannelCacheTTL()),
			livetv.WithLogger(p.logger.WithField("component", "livetv")))
		ctrl.Channels = p.channels
	}

	p.Controller = playback.New(ctrl)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p, nil
}

// Start attaches the engine and starts the desktop integrations enabled in
// the config.
func (p *Player) Start(engine Engine) error {
	p.Init(engine)

	if p.cfg.MPRISEnabled() {
		adapter, err := mpris.New(p.Controller)
		if err != nil {
			p.logger.WithError(err).Warn("mpris unavailable")
		} else {
			p.mpris = adapter
		}
	}

	if p.cfg.NotificationsEnabled() {
		notifier, err := notify.New()
		if err != nil {
			p.logger.WithError(err).Warn("notifications unavailable")
		} else {
			sub := p.Subscribe()
			p.wg.Go(func() {
				notify.Forward(p.ctx, sub, notifier, p.Controller, p.logger.WithField("component", "notify"))
			})
		}
	}

	if p.scrobbler != nil {
		p.wg.Go(p.retryScrobbles)
	}
	return nil
}

// ResumeQueue loads items and points the cursor at the position saved by the
// previous session, when it is still in range.
func (p *Player) ResumeQueue(items []Item) {
	start := 0
	saved, err := p.state.QueuePosition()
	if err != nil {
		p.logger.WithError(err).Warn(errmsg.Format(errmsg.OpQueueLoad, err))
	} else if saved >= 0 && saved < len(items) {
		start = saved
	}
	p.SetItems(items, start)
}

// LastChannel returns the channel tuned most recently and the one before it.
func (p *Player) LastChannel() (last, prev media.Item, err error) {
	if p.channels == nil {
		return media.Item{}, media.Item{}, nil
	}
	lastID, err := p.state.LastChannel()
	if err != nil {
		return media.Item{}, media.Item{}, err
	}
	prevID, err := p.state.PrevChannel()
	if err != nil {
		return media.Item{}, media.Item{}, err
	}
	lookup := func(id uuid.UUID) (media.Item, error) {
		if id == uuid.Nil {
			return media.Item{}, nil
		}
		ch, err := p.channels.Channel(p.ctx, id)
		if err != nil {
			return media.Item{}, err
		}
		return *ch, nil
	}
	if last, err = lookup(lastID); err != nil {
		return media.Item{}, media.Item{}, err
	}
	if prev, err = lookup(prevID); err != nil {
		return last, media.Item{}, err
	}
	return last, prev, nil
}

// ReloadChannels drops cached channel data so the next lookup refetches it.
func (p *Player) ReloadChannels() {
	if p.channels != nil {
		p.channels.ForceReload()
	}
}

func (p *Player) retryScrobbles() {
	if err := p.state.DeleteOldPendingScrobbles(scrobbleMaxAge); err != nil {
		p.logger.WithError(err).Debug("expire pending scrobbles")
	}
	ticker := time.NewTicker(scrobbleRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			ok, failed, err := p.scrobbler.RetryPending(p.ctx)
			if err != nil {
				p.logger.WithError(err).Debug("retry pending scrobbles")
				continue
			}
			if ok+failed > 0 {
				p.logger.WithFields(logrus.Fields{"submitted": ok, "failed": failed}).Info("retried pending scrobbles")
			}
		}
	}
}

// Close stops playback, the integrations and the session store. It is safe
// to call more than once.
func (p *Player) Close() error {
	var errs []error
	p.once.Do(func() {
		errs = append(errs, p.Controller.Close())
		p.cancel()
		p.wg.Wait()
		if p.mpris != nil {
			errs = append(errs, p.mpris.Close())
		}
		errs = append(errs, p.state.Close())
		errs = append(errs, p.logCloser.Close())
	})
	return errors.Join(errs...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
