package playback

import (
	"slices"
	"testing"
)

var allStates = []State{
	StateUndefined, StateIdle, StateBuffering, StatePlaying, StatePaused, StateSeeking, StateError,
}

var allEvents = []event{
	evInit, evPlay, evPrepared, evPause, evSeek, evSeekDone, evSeekFailed,
	evRebuild, evRebuildDone, evStop, evFatal, evTeardown,
}

type edge struct {
	from State
	ev   event
}

// validEdges is every accepted transition and its target state.
var validEdges = map[edge]State{
	{StateUndefined, evInit}: StateIdle,

	{StateIdle, evPlay}:  StateBuffering,
	{StateIdle, evStop}:  StateIdle,
	{StateIdle, evFatal}: StateError,

	{StateBuffering, evPrepared}:    StatePlaying,
	{StateBuffering, evRebuildDone}: StatePlaying,
	{StateBuffering, evStop}:        StateIdle,
	{StateBuffering, evFatal}:       StateError,

	{StatePlaying, evPause}:    StatePaused,
	{StatePlaying, evSeek}:     StateSeeking,
	{StatePlaying, evRebuild}:  StateBuffering,
	{StatePlaying, evPrepared}: StatePlaying,
	{StatePlaying, evStop}:     StateIdle,
	{StatePlaying, evFatal}:    StateError,

	{StatePaused, evPlay}:     StatePlaying,
	{StatePaused, evPrepared}: StatePlaying,
	{StatePaused, evSeek}:     StateSeeking,
	{StatePaused, evRebuild}:  StateBuffering,
	{StatePaused, evStop}:     StateIdle,
	{StatePaused, evFatal}:    StateError,

	{StateSeeking, evSeekDone}:   StatePlaying,
	{StateSeeking, evSeekFailed}: StatePaused,
	{StateSeeking, evPrepared}:   StateSeeking,
	{StateSeeking, evStop}:       StateIdle,
	{StateSeeking, evFatal}:      StateError,

	{StateError, evStop}: StateError,
}

func TestTransition_AllPairs(t *testing.T) {
	for _, from := range allStates {
		for _, ev := range allEvents {
			got, _, ok := transition(from, ev)

			want, valid := validEdges[edge{from, ev}]
			if ev == evTeardown && from != StateUndefined {
				want, valid = StateUndefined, true
			}

			if ok != valid {
				t.Errorf("transition(%v, %v) ok = %v, want %v", from, ev, ok, valid)
				continue
			}
			if !valid {
				if got != from {
					t.Errorf("transition(%v, %v) rejected but moved to %v", from, ev, got)
				}
				continue
			}
			if got != want {
				t.Errorf("transition(%v, %v) = %v, want %v", from, ev, got, want)
			}
		}
	}
}

func TestTransition_LoopEffectsNeverOverlap(t *testing.T) {
	for _, from := range allStates {
		for _, ev := range allEvents {
			_, effects, ok := transition(from, ev)
			if !ok {
				continue
			}
			if slices.Contains(effects, effStartActive) && slices.Contains(effects, effStartPaused) {
				t.Errorf("transition(%v, %v) starts both report loops", from, ev)
			}
		}
	}
}

func TestTransition_EnteringPausedStartsPausedLoop(t *testing.T) {
	for _, from := range allStates {
		for _, ev := range allEvents {
			to, effects, ok := transition(from, ev)
			if !ok || to != StatePaused || from == StatePaused {
				continue
			}
			if !slices.Contains(effects, effStartPaused) {
				t.Errorf("transition(%v, %v) enters Paused without the paused loop", from, ev)
			}
		}
	}
}

func TestTransition_StopReportsBeforeClearing(t *testing.T) {
	for _, from := range []State{StateBuffering, StatePlaying, StatePaused, StateSeeking} {
		_, effects, _ := transition(from, evStop)
		report := slices.Index(effects, effReportStopped)
		clearAt := slices.Index(effects, effClearSession)
		if report < 0 || clearAt < 0 || report > clearAt {
			t.Errorf("stop from %v: effects %v, want report before clear", from, effects)
		}
	}
}

func TestEvent_String(t *testing.T) {
	if got := evRebuildDone.String(); got != "rebuild-done" {
		t.Errorf("evRebuildDone.String() = %q, want rebuild-done", got)
	}
	if got := event(99).String(); got != "unknown" {
		t.Errorf("event(99).String() = %q, want unknown", got)
	}
}
