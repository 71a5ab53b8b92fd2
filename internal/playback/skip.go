package playback

import "time"

// skipDebounce collapses rapid skips into a single seek.
const skipDebounce = 800 * time.Millisecond

// skip moves the skip target by delta and seeks once the user stops
// skipping. Repeated skips accumulate on the pending target.
func (c *Controller) skip(delta time.Duration) {
	if c.engine == nil || !c.engine.IsInitialized() {
		return
	}
	if !c.isPlaying() && c.state != StatePaused {
		return
	}
	if !c.pos.startupDone || c.engine.Position() <= 0 {
		return
	}

	c.skipTimer.cancel()
	c.refresh()
	base := c.pos.skipTarget
	if base == noPosition {
		base = c.pos.current
	}
	target := max(base+delta, 0)
	if dur := c.duration(); dur > 0 {
		target = min(target, dur)
	}
	c.pos.skipTarget = target
	c.pos.seekTarget = target

	c.skipTimer.schedule(skipDebounce, c.box.post, func() {
		target := c.pos.skipTarget
		c.pos.skipTarget = noPosition
		if target == noPosition || (!c.isPlaying() && c.state != StatePaused) {
			return
		}
		c.seek(target, false)
	})
}
