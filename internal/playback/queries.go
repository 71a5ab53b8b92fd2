package playback

import (
	"time"

	"github.com/llehouerou/lumen/internal/media"
)

// State returns the current playback state.
func (c *Controller) State() State {
	return query(c, func() State { return c.state })
}

// Position returns the playback position. A pending seek target is reported
// while the engine is not rendering.
func (c *Controller) Position() time.Duration {
	return query(c, c.position)
}

// Duration returns the media duration, falling back to the item's runtime
// until the engine knows it.
func (c *Controller) Duration() time.Duration {
	return query(c, c.duration)
}

// BufferedPosition returns how far the engine has buffered.
func (c *Controller) BufferedPosition() time.Duration {
	return query(c, func() time.Duration {
		if c.engine != nil && c.engine.IsInitialized() {
			if b := c.engine.BufferedPosition(); b >= 0 {
				return b
			}
		}
		return c.duration()
	})
}

// CurrentItem returns a copy of the item at the queue cursor, or nil.
func (c *Controller) CurrentItem() *media.Item {
	return query(c, func() *media.Item {
		item := c.queue.Current()
		if item == nil {
			return nil
		}
		cp := *item
		return &cp
	})
}

// QueueIndex returns the queue cursor (-1 if empty).
func (c *Controller) QueueIndex() int {
	return query(c, c.queue.CurrentIndex)
}

// IsLive reports whether the current item is a live channel.
func (c *Controller) IsLive() bool {
	return query(c, func() bool { return c.queue.Current().IsLive() })
}

// IsTranscoding reports whether the running stream is transcoded.
func (c *Controller) IsTranscoding() bool {
	return query(c, func() bool { return c.plan != nil && c.plan.IsTranscoding() })
}

// CanSeek reports whether the engine can seek in the running stream.
func (c *Controller) CanSeek() bool {
	return query(c, func() bool { return c.engine != nil && c.engine.IsSeekable() })
}

// HasNext returns true if there's an item after the current one.
func (c *Controller) HasNext() bool {
	return query(c, c.queue.HasNext)
}

// HasPrev returns true if there's an item before the current one.
func (c *Controller) HasPrev() bool {
	return query(c, c.queue.HasPrev)
}

func (c *Controller) isPlaying() bool {
	return c.state == StatePlaying && c.engine != nil && c.engine.IsPlaying()
}

func (c *Controller) refresh() {
	c.pos.refresh(c.engine, c.queue.Current().IsLive(), c.isPlaying(), c.now())
}

func (c *Controller) position() time.Duration {
	c.refresh()
	return c.pos.observed(c.isPlaying())
}

func (c *Controller) duration() time.Duration {
	if c.engine != nil && c.engine.IsInitialized() {
		if d := c.engine.Duration(); d > 0 {
			return d
		}
	}
	if item := c.queue.Current(); item != nil {
		return max(item.RunTime, 0)
	}
	return 0
}

func (c *Controller) enginePosition() time.Duration {
	if c.engine == nil || !c.engine.IsInitialized() {
		return 0
	}
	return c.engine.Position()
}
