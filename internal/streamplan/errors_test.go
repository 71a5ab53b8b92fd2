package streamplan

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"typed error", &Error{Kind: KindRateLimited, Err: errors.New("429")}, KindRateLimited},
		{"wrapped sentinel", fmt.Errorf("server: %w", ErrNotAllowed), KindNotAllowed},
		{"plain sentinel", ErrNoCompatibleStream, KindNoCompatibleStream},
		{"unknown", errors.New("connection reset"), KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_IsMatchesKindSentinel(t *testing.T) {
	err := &Error{Kind: KindNotAllowed, Err: errors.New("parental control")}

	if !errors.Is(err, ErrNotAllowed) {
		t.Error("errors.Is(err, ErrNotAllowed) = false, want true")
	}
	if errors.Is(err, ErrRateLimited) {
		t.Error("errors.Is(err, ErrRateLimited) = true, want false")
	}
}

func TestKindFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Kind
	}{
		{"NotAllowed", KindNotAllowed},
		{"NoCompatibleStream", KindNoCompatibleStream},
		{"RateLimitExceeded", KindRateLimited},
		{"SomethingElse", KindGeneric},
		{"", KindGeneric},
	}
	for _, tt := range tests {
		if got := KindFromCode(tt.code); got != tt.want {
			t.Errorf("KindFromCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsAC3Failure(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("E-AC3 decoder missing"), true},
		{fmt.Errorf("prepare: %w", errors.New("Unsupported audio codec")), true},
		{errors.New("401 unauthorized"), false},
	}
	for _, tt := range tests {
		if got := isAC3Failure(tt.err); got != tt.want {
			t.Errorf("isAC3Failure(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
