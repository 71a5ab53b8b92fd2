package playback

import (
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/lumen/internal/media"
	"github.com/llehouerou/lumen/internal/streamplan"
)

// SwitchAudioStream selects an audio track, in place when the engine can,
// otherwise by renegotiating at the current position.
func (c *Controller) SwitchAudioStream(index int) {
	c.do(func() { c.switchAudio(index) })
}

// SetSubtitleStream selects a subtitle track. -1 disables subtitles.
func (c *Controller) SetSubtitleStream(index int) {
	c.do(func() {
		if c.state != StatePlaying && c.state != StatePaused {
			return
		}
		c.setSubtitle(index, false)
	})
}

// AudioStreamIndex returns the selected audio track, or -1.
func (c *Controller) AudioStreamIndex() int {
	return query(c, c.audioIndex)
}

// SubtitleStreamIndex returns the selected subtitle track, or -1.
func (c *Controller) SubtitleStreamIndex() int {
	return query(c, func() int {
		if c.opts == nil {
			return streamplan.SubtitleNone
		}
		return c.opts.SubtitleIndex.OrElse(streamplan.SubtitleNone)
	})
}

// applyTracks brings the engine's tracks in line with the chosen ones once
// the media is prepared.
func (c *Controller) applyTracks() {
	if c.plan == nil || c.engine == nil {
		return
	}
	if !c.burningSubs {
		c.setSubtitle(c.opts.SubtitleIndex.OrElse(streamplan.SubtitleNone), true)
	}

	src := c.plan.MediaSource
	eligible := c.defaultAudio
	if idx, ok := c.opts.AudioIndex.Get(); ok {
		eligible = idx
	} else if idx, ok := src.DefaultAudioIndex.Get(); ok {
		eligible = idx
	}

	current := c.engine.TrackIndex(media.StreamAudio)
	if current != eligible {
		c.switchAudio(eligible)
		return
	}
	if current >= 0 && c.opts.AudioIndex.OrElse(-1) != current {
		c.opts.AudioIndex = mo.Some(current)
		c.negotiator.RememberAudio(src, current)
	}
}

func (c *Controller) audioIndex() int {
	if c.plan == nil || c.opts == nil {
		return -1
	}
	src := c.plan.MediaSource
	if c.engine != nil && c.engine.IsInitialized() && !c.plan.IsTranscoding() {
		if idx := c.engine.TrackIndex(media.StreamAudio); idx >= 0 {
			return idx
		}
	}
	if idx, ok := c.opts.AudioIndex.Get(); ok {
		return idx
	}
	if s, ok := streamplan.SelectAudio(src, c.prefs.AudioLanguage(), ""); ok {
		return s.Index
	}
	if c.plan.IsTranscoding() {
		return src.DefaultAudioIndex.OrElse(-1)
	}
	return -1
}

func (c *Controller) switchAudio(index int) {
	if (c.state != StatePlaying && c.state != StatePaused) || index < 0 || c.plan == nil {
		return
	}
	if c.audioIndex() == index {
		c.opts.AudioIndex = mo.Some(index)
		return
	}

	c.refresh()
	src := c.plan.MediaSource
	c.opts.MediaSourceID = src.ID
	c.opts.AudioIndex = mo.Some(index)
	if !c.plan.IsTranscoding() && c.engine.SetTrack(index, media.StreamAudio) {
		c.logger.WithField("audio", index).Debug("switched audio in place")
		c.negotiator.RememberAudio(src, index)
		return
	}

	c.logger.WithField("audio", index).Info("renegotiating for audio change")
	item, opts, pos := c.queue.Current(), *c.opts, c.pos.current
	c.stop()
	if item != nil {
		c.begin(item, pos, opts)
	}
}

func (c *Controller) setSubtitle(index int, force bool) {
	if c.plan == nil || c.opts == nil {
		return
	}
	current := c.opts.SubtitleIndex.OrElse(streamplan.SubtitleNone)
	if !force && index == current {
		return
	}
	log := c.logger.WithFields(logrus.Fields{"sub": index, "force": force})

	if index == streamplan.SubtitleNone {
		if current == streamplan.SubtitleNone && !c.burningSubs && !force {
			return
		}
		c.opts.SubtitleIndex = mo.Some(streamplan.SubtitleNone)
		if c.burningSubs {
			log.Info("dropping burned-in subtitles")
			c.restartWithSubtitle(streamplan.SubtitleNone)
			return
		}
		c.engine.SetTrack(streamplan.SubtitleNone, media.StreamSubtitle)
		return
	}

	stream, ok := c.plan.MediaSource.Stream(index)
	if !ok || stream.Type != media.StreamSubtitle {
		log.Warn("subtitle stream not found")
		return
	}

	switch {
	case c.burningSubs || stream.DeliveryMethod.IsBurnIn():
		if force && c.plan.Options.SubtitleIndex.OrElse(streamplan.SubtitleNone) == index {
			// the running stream was negotiated with this track
			c.opts.SubtitleIndex = mo.Some(index)
			return
		}
		if index != current || force {
			log.Info("burning in subtitles")
			c.restartWithSubtitle(index)
		}
	case stream.DeliveryMethod == media.DeliveryDrop:
		c.setSubtitle(streamplan.SubtitleNone, force)
	default:
		if !c.engine.SetTrack(index, media.StreamSubtitle) {
			log.Warn("engine could not select subtitles, disabling")
			c.setSubtitle(streamplan.SubtitleNone, true)
			return
		}
		c.opts.SubtitleIndex = mo.Some(index)
	}
}

// restartWithSubtitle renegotiates at the current position with a subtitle
// track fixed, used whenever burned-in subtitles change.
func (c *Controller) restartWithSubtitle(index int) {
	c.refresh()
	pos := c.pos.current
	c.stop()
	c.play(pos, mo.Some(index))
}
