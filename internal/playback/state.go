// internal/playback/state.go
package playback

// State represents the playback state.
//
//	            play                onPrepared
//	 ┌──────┐ ───────▶ ┌───────────┐ ─────────▶ ┌─────────┐
//	 │ Idle │          │ Buffering │            │ Playing │ ◀─┐
//	 └──────┘ ◀─────── └───────────┘            └─────────┘   │
//	     ▲      stop          ▲              pause │   ▲      │ seek accepted
//	     │                    │ retry              ▼   │ play │
//	     │                    │               ┌────────┐ ┌─────────┐
//	     └─── stop / complete ┴────────────── │ Paused │ │ Seeking │
//	                                          └────────┘ └─────────┘
//
// Error is terminal for the session. Undefined is the state before Init and
// after Close; public commands are ignored there.
type State int

const (
	StateUndefined State = iota
	StateIdle
	StateBuffering
	StatePlaying
	StatePaused
	StateSeeking
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUndefined:
		return "Undefined"
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateSeeking:
		return "Seeking"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if media is loaded and not stopped.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused || s == StateSeeking || s == StateBuffering
}

// IsStopped returns true if nothing is loaded.
func (s State) IsStopped() bool {
	return s == StateIdle || s == StateUndefined || s == StateError
}
