// internal/playback/controller.go
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/player"
	"github.com/llehouerou/lumen/internal/playlist"
	"github.com/llehouerou/lumen/internal/streamplan"
)

// NextUpBehavior controls what happens when an item finishes and another
// one follows it in the queue.
type NextUpBehavior int

const (
	NextUpExtended NextUpBehavior = iota
	NextUpMinimal
	NextUpDisabled
)

// Default skip lengths for FastForward and Rewind.
const (
	DefaultSkipForward = 30 * time.Second
	DefaultSkipBack    = 10 * time.Second
)

// Preferences are the user settings the controller reads. They are read on
// each use, so changes apply to the next operation.
type Preferences interface {
	AudioLanguage() string
	NextUpBehavior() NextUpBehavior
	StartDelay() time.Duration
	LiveDirectPlay() bool
	SkipForward() time.Duration
	SkipBack() time.Duration
	MaxAudioChannels() int
}

// SessionStore persists playback state that outlives the process.
type SessionStore interface {
	SaveQueuePosition(index int) error
	SaveLastChannel(id uuid.UUID) error
}

// ChannelSource resolves live channels to their current program.
type ChannelSource interface {
	Channel(ctx context.Context, id uuid.UUID) (*media.Item, error)
	MarkPlayed(id uuid.UUID, at time.Time)
}

// Config holds the controller's collaborators. Negotiator is required; every
// other field has a usable default.
type Config struct {
	Queue       *playlist.Queue
	Negotiator  *streamplan.Negotiator
	Reporter    Reporter
	Preferences Preferences
	Sessions    SessionStore
	Channels    ChannelSource
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// pendingPlay is the attempt waiting on negotiation.
type pendingPlay struct {
	item     media.Item
	position time.Duration
	opts     streamplan.Options
}

// Controller drives one playback session. All state is owned by a single
// goroutine; public methods post to it and wait, engine callbacks post
// without waiting.
type Controller struct {
	queue      *playlist.Queue
	negotiator *streamplan.Negotiator
	reporter   Reporter
	prefs      Preferences
	sessions   SessionStore
	channels   ChannelSource
	logger     logrus.FieldLogger
	now        func() time.Time

	box          *mailbox
	reports      *mailbox
	ctx          context.Context
	cancel       context.CancelFunc
	reportCtx    context.Context
	reportCancel context.CancelFunc
	inflight     sync.WaitGroup
	closeOnce    sync.Once

	subs       []*Subscription
	subsMu     sync.RWMutex
	subsClosed bool

	// Owned by the controller goroutine.
	state        State
	engine       player.Engine
	plan         *streamplan.Plan
	opts         *streamplan.Options
	pos          positionTracker
	errors       errorBudget
	session      uint64
	pending      pendingPlay
	pendingSeek  time.Duration
	defaultAudio int
	burningSubs  bool
	liveDirect   bool
	speed        float64
	lastStarted  *media.Item

	loop       loopKind
	loopTimer  timerSlot
	skipTimer  timerSlot
	startTimer timerSlot
	seekPoll   timerSlot
}

// New creates a controller in the Undefined state. Call Init to attach an
// engine.
func New(cfg Config) *Controller {
	c := &Controller{
		queue:        cfg.Queue,
		negotiator:   cfg.Negotiator,
		reporter:     cfg.Reporter,
		prefs:        cfg.Preferences,
		sessions:     cfg.Sessions,
		channels:     cfg.Channels,
		logger:       cfg.Logger,
		now:          cfg.Now,
		box:          newMailbox(),
		reports:      newMailbox(),
		state:        StateUndefined,
		pos:          newPositionTracker(),
		defaultAudio: -1,
		speed:        1,
	}
	if c.queue == nil {
		c.queue = playlist.NewQueue()
	}
	if c.reporter == nil {
		c.reporter = nopReporter{}
	}
	if c.prefs == nil {
		c.prefs = defaultPreferences{}
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.liveDirect = c.prefs.LiveDirectPlay()

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.reportCtx, c.reportCancel = context.WithCancel(context.Background())
	go c.box.run()
	go c.reports.run()
	return c
}

// Init attaches the render engine and moves the controller to Idle.
func (c *Controller) Init(engine player.Engine) {
	c.do(func() {
		if c.state != StateUndefined || engine == nil {
			return
		}
		c.engine = engine
		engine.SetListener(c)
		c.fire(evInit)
	})
}

// Close stops playback, releases the engine and waits for background work.
// Reports queued before Close are still delivered.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.do(c.teardown)
		c.cancel()
		c.box.close()
		<-c.box.done
		c.inflight.Wait()

		c.reports.close()
		<-c.reports.done
		c.reportCancel()

		c.subsMu.Lock()
		c.subsClosed = true
		for _, sub := range c.subs {
			sub.close()
		}
		c.subs = nil
		c.subsMu.Unlock()
	})
	return nil
}

func (c *Controller) teardown() {
	if c.state == StateUndefined {
		return
	}
	c.stop()
	c.fire(evTeardown)
}

// Subscribe creates a new event subscription.
func (c *Controller) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	if c.subsClosed {
		sub.close()
		return sub
	}
	c.subs = append(c.subs, sub)
	return sub
}

// do runs fn on the controller goroutine and waits for it. It returns
// without running fn once the controller is closed.
func (c *Controller) do(fn func()) {
	done := make(chan struct{})
	if !c.box.post(func() {
		defer close(done)
		fn()
	}) {
		return
	}
	select {
	case <-done:
	case <-c.box.done:
	}
}

func query[T any](c *Controller, fn func() T) T {
	var v T
	c.do(func() { v = fn() })
	return v
}

// fire applies ev to the state machine and runs the resulting effects.
// Returns false if ev is not valid in the current state.
func (c *Controller) fire(ev event) bool {
	next, effects, ok := transition(c.state, ev)
	if !ok {
		c.logger.WithFields(logrus.Fields{"state": c.state, "event": ev}).Debug("ignoring event")
		return false
	}
	prev := c.state
	c.state = next
	if prev != next {
		c.logger.WithFields(logrus.Fields{"from": prev, "to": next}).Debug("state change")
		c.emit(func(s *Subscription) { s.sendState(StateChange{Previous: prev, Current: next}) })
	}
	for _, eff := range effects {
		c.apply(eff)
	}
	return true
}

func (c *Controller) apply(eff effect) {
	switch eff {
	case effStopLoops:
		c.stopLoops()
	case effStartActive:
		c.startActiveLoop()
	case effStartPaused:
		c.startPausedLoop()
	case effEngineStart:
		if c.engine != nil {
			c.engine.Start()
		}
	case effEnginePause:
		if c.engine != nil {
			c.engine.Pause()
		}
	case effEngineStop:
		c.startTimer.cancel()
		if c.engine != nil {
			c.engine.StopPlayback()
		}
	case effEngineSeek:
		c.engineSeek()
	case effNegotiate:
		c.negotiate()
	case effRebuild:
		c.rebuild()
	case effMarkStarted:
		c.pos.transcodeStart = time.Time{}
		if c.plan != nil && c.plan.IsTranscoding() {
			c.pos.transcodeStart = c.now()
		}
	case effApplyTracks:
		c.applyTracks()
	case effReportStopped:
		c.reportStopped()
	case effClearSession:
		c.clearSession()
	case effRelease:
		if c.engine != nil {
			c.engine.Release()
			c.engine = nil
		}
	}
}

// clearSession forgets the running stream. The options and the last
// position survive so a retry can resume with the same tracks.
func (c *Controller) clearSession() {
	c.session++
	c.plan = nil
	c.defaultAudio = -1
	c.burningSubs = false
	c.pos.clearSession()
	c.skipTimer.cancel()
	c.seekPoll.cancel()
}

// goAsync runs work off the controller goroutine and applies its result
// back on it, unless the session changed in the meantime.
func goAsync[T any](c *Controller, itemID uuid.UUID, work func(ctx context.Context) (T, error), apply func(T, error)) {
	token := c.session
	ctx := c.ctx
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		v, err := work(ctx)
		c.box.post(func() {
			if token != c.session || !c.isCurrent(itemID) {
				c.logger.WithField("item", itemID).Debug("dropping stale result")
				return
			}
			apply(v, err)
		})
	}()
}

func (c *Controller) isCurrent(itemID uuid.UUID) bool {
	item := c.queue.Current()
	return item != nil && item.ID == itemID
}

func (c *Controller) emit(send func(*Subscription)) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		send(sub)
	}
}

func (c *Controller) notice(kind NoticeKind, msg string, err error) {
	c.emit(func(s *Subscription) { s.sendNotice(Notice{Kind: kind, Message: msg, Err: err}) })
}

func (c *Controller) end(reason EndReason) {
	c.logger.WithField("reason", reason).Info("playback ended")
	c.emit(func(s *Subscription) { s.sendEnded(Ended{Reason: reason}) })
}

func (c *Controller) saveQueuePosition() {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.SaveQueuePosition(c.queue.CurrentIndex()); err != nil {
		c.logger.WithError(err).Warn("save queue position")
	}
}

type defaultPreferences struct{}

func (defaultPreferences) AudioLanguage() string          { return "" }
func (defaultPreferences) NextUpBehavior() NextUpBehavior { return NextUpExtended }
func (defaultPreferences) StartDelay() time.Duration      { return 0 }
func (defaultPreferences) LiveDirectPlay() bool           { return true }
func (defaultPreferences) SkipForward() time.Duration     { return DefaultSkipForward }
func (defaultPreferences) SkipBack() time.Duration        { return DefaultSkipBack }
func (defaultPreferences) MaxAudioChannels() int          { return 0 }
