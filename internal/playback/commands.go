package playback

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/errmsg"
	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/player"
	"github.com/llehouerou/lumen/internal/streamplan"
)

// skipToNextMargin is how close to the end a seek must land to count as
// finishing the item.
const skipToNextMargin = 100 * time.Millisecond

// Play starts the current item at pos, or resumes when paused.
func (c *Controller) Play(pos time.Duration) {
	c.do(func() { c.play(pos, mo.None[int]()) })
}

// Pause pauses playback. Ignored unless playing.
func (c *Controller) Pause() {
	c.do(func() { c.fire(evPause) })
}

// Stop stops playback and reports the stop.
func (c *Controller) Stop() {
	c.do(c.stop)
}

// PlayPause toggles between playing and paused. From Idle it starts the
// current item at the last known position.
func (c *Controller) PlayPause() {
	c.do(func() {
		switch c.state {
		case StatePlaying:
			c.fire(evPause)
		case StatePaused, StateIdle:
			c.play(c.position(), mo.None[int]())
		}
	})
}

// Seek moves to pos. With skipToNext, a target within the last moments of
// the item finishes it instead.
func (c *Controller) Seek(pos time.Duration, skipToNext bool) {
	c.do(func() { c.seek(pos, skipToNext) })
}

// FastForward skips ahead by the configured length.
func (c *Controller) FastForward() {
	c.do(func() { c.skip(c.prefs.SkipForward()) })
}

// Rewind skips back by the configured length.
func (c *Controller) Rewind() {
	c.do(func() { c.skip(-c.prefs.SkipBack()) })
}

// Next plays the following item. Ignored at the end of the queue.
func (c *Controller) Next() {
	c.do(c.next)
}

// Prev plays the preceding item. Ignored at the start of the queue.
func (c *Controller) Prev() {
	c.do(c.prev)
}

// RefreshStream restarts the current item at the current position with a
// freshly negotiated stream.
func (c *Controller) RefreshStream() {
	c.do(func() {
		if c.state.IsStopped() {
			return
		}
		c.refresh()
		pos := c.pos.current
		c.stop()
		c.play(pos, mo.None[int]())
	})
}

// SetItems stops playback and replaces the queue, positioned on start.
func (c *Controller) SetItems(items []media.Item, start int) {
	c.do(func() {
		c.stop()
		c.errors.reset()
		c.queue.Replace(items...)
		c.queue.JumpTo(start)
		c.saveQueuePosition()
	})
}

// SetPlaybackSpeed changes the playback rate. Live items always play at 1x.
func (c *Controller) SetPlaybackSpeed(speed float64) {
	c.do(func() {
		if speed <= 0 {
			return
		}
		c.speed = speed
		if c.engine == nil {
			return
		}
		if item := c.queue.Current(); item.IsLive() {
			c.engine.SetPlaybackSpeed(1)
			return
		}
		c.engine.SetPlaybackSpeed(speed)
	})
}

func (c *Controller) play(pos time.Duration, forcedSubtitle mo.Option[int]) {
	pos = max(pos, 0)
	switch c.state {
	case StatePaused:
		if c.engine == nil || !c.engine.IsInitialized() {
			return
		}
		c.fire(evPlay)

	case StateIdle:
		item := c.queue.Current()
		if item == nil {
			c.notice(NoticeCannotPlay, errmsg.MsgCannotPlay, nil)
			c.end(EndCannotPlay)
			return
		}
		if item.IsPlaceholder() {
			c.logger.WithField("item", item.ID).Info("item has no media")
			c.emit(func(s *Subscription) {
				s.sendMissing(MissingMedia{Item: *item, HasNext: c.queue.HasNext()})
			})
			return
		}
		if c.queue.Entered() {
			// a different item: track choices of the previous one do not carry over
			if c.opts != nil {
				c.opts.AudioIndex = mo.None[int]()
				c.opts.SubtitleIndex = mo.None[int]()
				c.opts.MediaSourceID = ""
			}
			c.defaultAudio = -1
		}

		opts := c.negotiator.BuildOptions(streamplan.Request{
			Item:              item,
			Previous:          c.opts,
			Retries:           c.errors.count,
			LiveDirectStream:  c.liveDirect,
			PreferredLanguage: c.prefs.AudioLanguage(),
			ForcedSubtitle:    forcedSubtitle,
			MaxAudioChannels:  c.prefs.MaxAudioChannels(),
		})
		c.begin(item, pos, opts)

	default:
		c.logger.WithField("state", c.state).Debug("play ignored")
	}
}

// begin starts negotiating item with opts as they are.
func (c *Controller) begin(item *media.Item, pos time.Duration, opts streamplan.Options) {
	c.pos.current = 0
	c.pos.seekTarget = pos
	if item.IsLive() {
		c.pos.seekTarget = noPosition
	}
	c.pending = pendingPlay{item: *item, position: pos, opts: opts}
	if !c.fire(evPlay) {
		return
	}
	if c.lastStarted == nil || c.lastStarted.ID != item.ID {
		prev, cur := c.lastStarted, *item
		c.lastStarted = &cur
		idx := c.queue.CurrentIndex()
		c.emit(func(s *Subscription) { s.sendItem(ItemChange{Previous: prev, Current: &cur, Index: idx}) })
	}
}

func (c *Controller) negotiate() {
	p := c.pending
	c.logger.WithFields(logrus.Fields{
		"item":     p.item.ID,
		"position": p.position,
		"retries":  c.errors.count,
	}).Info("negotiating stream")

	if p.item.IsLive() {
		c.markChannel(&p.item)
		c.refreshProgram(p.item.ID)
	}
	goAsync(c, p.item.ID,
		func(ctx context.Context) (*streamplan.Plan, error) {
			return c.negotiator.Negotiate(ctx, &p.item, p.opts, p.position)
		},
		func(plan *streamplan.Plan, err error) {
			if c.state != StateBuffering {
				return
			}
			if err != nil {
				c.negotiationFailed(err)
				return
			}
			c.startItem(p, plan)
		})
}

func (c *Controller) negotiationFailed(err error) {
	kind := streamplan.Classify(err)
	c.logger.WithError(err).WithField("kind", kind).Error("stream negotiation failed")
	c.notice(NoticeNegotiationFailed, negotiationMessage(kind, err), err)
	c.fire(evStop)
	c.end(EndNegotiationFailed)
}

func negotiationMessage(kind streamplan.Kind, err error) string {
	switch kind {
	case streamplan.KindNotAllowed:
		return errmsg.MsgNotAllowed
	case streamplan.KindNoCompatibleStream:
		return errmsg.MsgNoCompatibleStream
	case streamplan.KindRateLimited:
		return errmsg.MsgRateLimited
	default:
		return errmsg.Format(errmsg.OpStreamNegotiate, err)
	}
}

func burnsSubtitles(plan *streamplan.Plan) bool {
	return plan.SubtitleDelivery.IsBurnIn() && plan.SubtitleIndex.OrElse(streamplan.SubtitleNone) != streamplan.SubtitleNone
}

// startItem hands an accepted plan to the engine.
func (c *Controller) startItem(p pendingPlay, plan *streamplan.Plan) {
	opts := plan.Options
	opts.MediaSourceID = plan.MediaSource.ID
	opts.SubtitleIndex = plan.SubtitleIndex
	c.opts = &opts
	c.plan = plan
	c.pos.startPosition = p.position
	c.burningSubs = burnsSubtitles(plan)

	c.resolveDefaultAudio()
	if idx, ok := opts.AudioIndex.Get(); ok {
		c.negotiator.RememberAudio(plan.MediaSource, idx)
	}

	speed := c.speed
	if p.item.IsLive() {
		speed = 1
	}
	c.engine.SetPlaybackSpeed(speed)
	src := player.Source{URL: plan.MediaURL, Container: plan.Container, Transcoded: plan.IsTranscoding()}
	if err := c.engine.SetSource(src); err != nil {
		c.logger.WithError(err).Error("engine rejected source")
		c.notice(NoticeCannotPlay, errmsg.Format(errmsg.OpPlaybackStart, err), err)
		c.fire(evStop)
		c.end(EndCannotPlay)
		return
	}

	c.logger.WithFields(logrus.Fields{
		"item":   p.item.ID,
		"method": plan.PlayMethod,
		"audio":  opts.AudioIndex.OrElse(-1),
		"sub":    opts.SubtitleIndex.OrElse(streamplan.SubtitleNone),
	}).Info("starting playback")

	if delay := c.prefs.StartDelay(); delay > 0 {
		c.startTimer.schedule(delay, c.box.post, func() {
			if c.engine != nil && c.state == StateBuffering {
				c.engine.Start()
			}
		})
	} else {
		c.engine.Start()
	}
	c.reportStart(p.position)
}

// resolveDefaultAudio fixes the audio track the engine should end up on.
func (c *Controller) resolveDefaultAudio() {
	if c.defaultAudio != -1 || c.plan == nil {
		return
	}
	src := c.plan.MediaSource
	switch {
	case c.opts.AudioIndex.IsPresent():
		c.defaultAudio = c.opts.AudioIndex.MustGet()
	case src.DefaultAudioIndex.IsPresent():
		c.defaultAudio = src.DefaultAudioIndex.MustGet()
	default:
		if s, ok := streamplan.SelectAudio(src, c.prefs.AudioLanguage(), ""); ok {
			c.defaultAudio = s.Index
		}
	}
}

func (c *Controller) stop() {
	c.refresh()
	c.skipTimer.cancel()
	c.seekPoll.cancel()
	c.fire(evStop)
}

func (c *Controller) next() {
	if !c.queue.HasNext() {
		return
	}
	c.stop()
	c.errors.reset()
	c.queue.Next()
	c.saveQueuePosition()
	c.play(0, mo.None[int]())
}

func (c *Controller) prev() {
	if !c.queue.HasPrev() {
		return
	}
	c.stop()
	c.errors.reset()
	c.queue.Prev()
	c.saveQueuePosition()
	c.play(0, mo.None[int]())
}

func (c *Controller) seek(pos time.Duration, skipToNext bool) {
	pos = max(pos, 0)
	if c.engine == nil || !c.engine.IsInitialized() {
		return
	}
	if c.pos.wasSeeking {
		c.logger.Debug("seek ignored, previous seek still pending")
		if c.state == StatePaused {
			// resume from wherever the previous seek left the clock
			c.refresh()
			c.play(c.pos.current, mo.None[int]())
		}
		return
	}
	if c.state != StatePlaying && c.state != StatePaused {
		return
	}
	c.pos.wasSeeking = true

	dur := c.duration()
	if skipToNext && dur > 0 && pos >= dur-skipToNextMargin {
		c.pos.current = dur
		c.pos.seekTarget = dur
		c.itemComplete()
		return
	}
	if dur > 0 {
		pos = min(pos, dur)
	}
	c.pos.seekTarget = pos
	if c.plan == nil {
		return
	}

	c.pendingSeek = pos
	if !c.engine.IsSeekable() {
		c.logger.WithField("position", pos).Info("engine cannot seek, rebuilding stream")
		c.fire(evRebuild)
		return
	}
	c.fire(evSeek)
}

func (c *Controller) engineSeek() {
	if err := c.engine.SeekTo(c.pendingSeek); err != nil {
		c.logger.WithError(err).WithField("position", c.pendingSeek).Warn("seek failed")
		c.pos.wasSeeking = false
		c.notice(NoticeSeekFailed, errmsg.Format(errmsg.OpPlaybackSeek, err), err)
		c.fire(evSeekFailed)
		return
	}
	c.fire(evSeekDone)
}

// rebuild asks the server for a new stream starting at the seek target.
func (c *Controller) rebuild() {
	current, item := c.plan, c.queue.Current()
	if current == nil || item == nil {
		return
	}
	opts := lo.FromPtrOr(c.opts, current.Options)
	pos := c.pendingSeek
	goAsync(c, item.ID,
		func(ctx context.Context) (*streamplan.Plan, error) {
			return c.negotiator.Rebuild(ctx, current, opts, pos)
		},
		func(plan *streamplan.Plan, err error) {
			if c.state != StateBuffering {
				return
			}
			if err != nil {
				c.logger.WithError(err).Error("stream rebuild failed")
				c.notice(NoticeStreamError, errmsg.MsgVideoError, err)
				c.stop()
				return
			}
			c.plan = plan
			c.burningSubs = burnsSubtitles(plan)
			c.pos.transcodeStart = time.Time{}
			if plan.IsTranscoding() {
				c.pos.transcodeStart = c.now()
			}
			src := player.Source{URL: plan.MediaURL, Container: plan.Container, Transcoded: plan.IsTranscoding()}
			if err := c.engine.SetSource(src); err != nil {
				c.notice(NoticeStreamError, errmsg.Format(errmsg.OpStreamChange, err), err)
				c.stop()
				return
			}
			c.fire(evRebuildDone)
		})
}
