package playback

// event is an input to the state machine.
type event int

const (
	evInit event = iota
	evPlay
	evPrepared
	evPause
	evSeek
	evSeekDone
	evSeekFailed
	evRebuild
	evRebuildDone
	evStop
	evFatal
	evTeardown
)

var eventNames = [...]string{
	evInit:        "init",
	evPlay:        "play",
	evPrepared:    "prepared",
	evPause:       "pause",
	evSeek:        "seek",
	evSeekDone:    "seek-done",
	evSeekFailed:  "seek-failed",
	evRebuild:     "rebuild",
	evRebuildDone: "rebuild-done",
	evStop:        "stop",
	evFatal:       "fatal",
	evTeardown:    "teardown",
}

func (e event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// effect is a side effect the controller performs after a transition,
// in the order listed.
type effect int

const (
	effStopLoops effect = iota
	effStartActive
	effStartPaused
	effEngineStart
	effEnginePause
	effEngineStop
	effEngineSeek
	effNegotiate
	effRebuild
	effMarkStarted
	effApplyTracks
	effReportStopped
	effClearSession
	effRelease
)

// Effect lists shared by several transitions.
var (
	stopEffects  = []effect{effStopLoops, effEngineStop, effReportStopped, effClearSession}
	pauseEffects = []effect{effEnginePause, effStopLoops, effStartPaused}
	fatalEffects = []effect{effStopLoops, effEngineStop, effReportStopped, effClearSession}
	downEffects  = []effect{effStopLoops, effRelease}
)

// transition returns the next state and its side effects. ok is false when
// the event is not valid in the current state; the caller ignores it.
func transition(from State, ev event) (State, []effect, bool) {
	if ev == evTeardown {
		if from == StateUndefined {
			return from, nil, false
		}
		return StateUndefined, downEffects, true
	}
	if ev == evFatal && from != StateUndefined && from != StateError {
		return StateError, fatalEffects, true
	}

	switch from {
	case StateUndefined:
		if ev == evInit {
			return StateIdle, nil, true
		}

	case StateIdle:
		switch ev {
		case evPlay:
			return StateBuffering, []effect{effNegotiate}, true
		case evStop:
			return StateIdle, []effect{effStopLoops}, true
		}

	case StateBuffering:
		switch ev {
		case evPrepared:
			return StatePlaying, []effect{effMarkStarted, effStartActive, effApplyTracks}, true
		case evRebuildDone:
			return StatePlaying, []effect{effEngineStart, effStartActive}, true
		case evStop:
			return StateIdle, stopEffects, true
		}

	case StatePlaying:
		switch ev {
		case evPause:
			return StatePaused, pauseEffects, true
		case evSeek:
			return StateSeeking, []effect{effEngineSeek}, true
		case evRebuild:
			return StateBuffering, []effect{effStopLoops, effEngineStop, effRebuild}, true
		case evPrepared:
			return StatePlaying, []effect{effApplyTracks}, true
		case evStop:
			return StateIdle, stopEffects, true
		}

	case StatePaused:
		switch ev {
		case evPlay:
			return StatePlaying, []effect{effEngineStart, effStartActive}, true
		case evPrepared:
			return StatePlaying, []effect{effStartActive}, true
		case evSeek:
			return StateSeeking, []effect{effEngineSeek}, true
		case evRebuild:
			return StateBuffering, []effect{effStopLoops, effEngineStop, effRebuild}, true
		case evStop:
			return StateIdle, stopEffects, true
		}

	case StateSeeking:
		switch ev {
		case evSeekDone:
			return StatePlaying, []effect{effEngineStart, effStartActive}, true
		case evSeekFailed:
			return StatePaused, pauseEffects, true
		case evPrepared:
			return StateSeeking, []effect{effApplyTracks}, true
		case evStop:
			return StateIdle, stopEffects, true
		}

	case StateError:
		if ev == evStop {
			return StateError, []effect{effStopLoops}, true
		}
	}
	return from, nil, false
}
