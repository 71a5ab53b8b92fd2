package playback

import (
	"time"

	"github.com/llehouerou/lumen/internal/player"
)

// noPosition marks an absent seek or skip target.
const noPosition time.Duration = -1

// positionTracker reconciles the engine clock with pending seek and skip
// targets. It belongs to the controller goroutine.
type positionTracker struct {
	current    time.Duration
	seekTarget time.Duration
	skipTarget time.Duration

	// startPosition is the requested start offset, consumed by the first
	// progress callback of the item.
	startPosition       time.Duration
	wasSeeking          bool
	finishedInitialSeek bool
	startupDone         bool

	programStart   time.Time
	programEnd     time.Time
	transcodeStart time.Time
}

func newPositionTracker() positionTracker {
	return positionTracker{seekTarget: noPosition, skipTarget: noPosition}
}

// refresh recomputes the current position. playing is true only when the
// controller is Playing and the engine reports it is rendering.
func (p *positionTracker) refresh(e player.Engine, live, playing bool, now time.Time) {
	if live && !p.programStart.IsZero() {
		p.current = p.realTime(now)
		return
	}
	if e == nil || !e.IsInitialized() {
		return
	}

	switch {
	case p.skipTarget != noPosition:
		p.current = p.skipTarget
	case !playing && p.seekTarget != noPosition:
		p.current = p.seekTarget
	case playing:
		switch {
		case p.finishedInitialSeek:
			p.current = e.Position()
			p.seekTarget = noPosition
		case p.wasSeeking:
			// first tick after the initial seek still reports the old clock
			p.finishedInitialSeek = true
		case p.seekTarget != noPosition:
			p.current = p.seekTarget
		}
		p.wasSeeking = false
	}
}

// observed is the position exposed to callers: a pending seek target wins
// while the engine is not rendering.
func (p *positionTracker) observed(playing bool) time.Duration {
	if !playing && p.seekTarget != noPosition {
		return p.seekTarget
	}
	return p.current
}

// realTime is the wall-clock time elapsed since the current program began.
func (p *positionTracker) realTime(now time.Time) time.Duration {
	if p.programStart.IsZero() {
		return 0
	}
	return max(now.Sub(p.programStart), 0)
}

// timeShifted reports the position within the current program. A transcoded
// live stream begins where the server joined the program, so its engine
// clock is offset by the time between program start and transcode start.
func (p *positionTracker) timeShifted(enginePos time.Duration, now time.Time, direct bool) time.Duration {
	if direct || p.transcodeStart.IsZero() || p.programStart.IsZero() {
		return p.realTime(now)
	}
	return enginePos + p.transcodeStart.Sub(p.programStart)
}

// clearSession drops per-item seek state. The last known position survives
// so a restart can resume from it.
func (p *positionTracker) clearSession() {
	p.seekTarget = noPosition
	p.skipTarget = noPosition
	p.startPosition = 0
	p.wasSeeking = false
	p.finishedInitialSeek = false
	p.startupDone = false
	p.transcodeStart = time.Time{}
}
