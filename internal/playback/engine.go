package playback

import (
	"time"

	"github.com/samber/mo"

	"github.com/llehouerou/lumen/internal/errmsg"
	"github.com/llehouerou/lumen/internal/media"
)

// initialSeekPoll is how often the initial seek checks whether the engine
// knows the duration yet.
const initialSeekPoll = 25 * time.Millisecond

// Engine callbacks. They may arrive on any goroutine and never block.

// OnPrepared is called by the engine when the source is ready to render.
func (c *Controller) OnPrepared() { c.box.post(c.onPrepared) }

// OnError is called by the engine when rendering fails.
func (c *Controller) OnError(err error) { c.box.post(func() { c.onError(err) }) }

// OnCompletion is called by the engine at the end of the media.
func (c *Controller) OnCompletion() { c.box.post(c.onCompletion) }

// OnProgress is called periodically by the engine while rendering.
func (c *Controller) OnProgress() { c.box.post(c.onProgress) }

func (c *Controller) onPrepared() {
	if c.state == StateUndefined || c.state == StateIdle || c.state == StateError {
		return
	}
	if c.plan == nil {
		c.notice(NoticeCannotPlay, errmsg.MsgCannotPlay, nil)
		c.fire(evStop)
		c.end(EndCannotPlay)
		return
	}
	c.fire(evPrepared)
}

func (c *Controller) onError(err error) {
	if c.state == StateUndefined || c.state == StateError || c.state == StateIdle {
		c.logger.WithError(err).Debug("engine error outside playback")
		return
	}
	c.logger.WithError(err).Warn("engine error")

	if item := c.queue.Current(); item.IsLive() && c.liveDirect {
		c.notice(NoticeLiveStreamError, errmsg.MsgLiveStreamFallback, err)
		c.liveDirect = false
	}

	if c.errors.record(c.now()) {
		c.logger.WithField("errors", c.errors.count).Info("retrying playback")
		c.notice(NoticeRetrying, errmsg.MsgRetrying, err)
		c.stop()
		c.play(c.pos.current, mo.None[int]())
		return
	}

	c.logger.WithField("errors", c.errors.count).Error("too many playback errors")
	c.fire(evFatal)
	c.notice(NoticeTooManyErrors, errmsg.MsgTooManyErrors, err)
	c.end(EndTooManyErrors)
}

func (c *Controller) onCompletion() {
	switch c.state {
	case StatePlaying, StateSeeking, StatePaused, StateBuffering:
		c.itemComplete()
	}
}

// itemComplete stops the finished item and decides what follows it.
func (c *Controller) itemComplete() {
	c.stop()
	c.errors.reset()

	cur, next := c.queue.Current(), c.queue.PeekNext()
	if cur == nil || next == nil {
		c.end(EndQueueFinished)
		return
	}
	if c.prefs.NextUpBehavior() != NextUpDisabled && cur.Kind != media.KindTrailer {
		c.queue.Next()
		c.saveQueuePosition()
		up := *next
		c.emit(func(s *Subscription) { s.sendNextUp(NextUp{Item: up}) })
		return
	}
	c.next()
}

func (c *Controller) onProgress() {
	c.refresh()
	if !c.isPlaying() || c.pos.startupDone {
		return
	}
	c.pos.startupDone = true
	if start := c.pos.startPosition; start > 0 {
		c.pos.startPosition = 0
		c.initialSeek(start)
		return
	}
	c.pos.finishedInitialSeek = true
}

// initialSeek moves to the requested start offset once the engine knows the
// media duration.
func (c *Controller) initialSeek(pos time.Duration) {
	if c.engine == nil || c.state.IsStopped() {
		return
	}
	if c.engine.Duration() <= 0 {
		c.seekPoll.schedule(initialSeekPoll, c.box.post, func() { c.initialSeek(pos) })
		return
	}
	if !c.engine.IsSeekable() {
		c.pos.finishedInitialSeek = true
		return
	}
	c.seek(pos, false)
}
