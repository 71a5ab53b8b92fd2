// internal/playback/state_test.go
package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUndefined, "Undefined"},
		{StateIdle, "Idle"},
		{StateBuffering, "Buffering"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{StateSeeking, "Seeking"},
		{StateError, "Error"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateUndefined, false},
		{StateIdle, false},
		{StateBuffering, true},
		{StatePlaying, true},
		{StatePaused, true},
		{StateSeeking, true},
		{StateError, false},
	}
	for _, tt := range tests {
		if got := tt.state.IsActive(); got != tt.want {
			t.Errorf("%v.IsActive() = %v, want %v", tt.state, got, tt.want)
		}
		if got := tt.state.IsStopped(); got == tt.want {
			t.Errorf("%v.IsStopped() = %v, want %v", tt.state, got, !tt.want)
		}
	}
}
