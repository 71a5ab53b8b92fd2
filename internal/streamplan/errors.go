package streamplan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Negotiation failures reported by the server.
var (
	ErrNotAllowed         = errors.New("playback not allowed")
	ErrNoCompatibleStream = errors.New("no compatible stream")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrNoMediaURL         = errors.New("plan has no media url")
)

// Kind classifies a negotiation failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindNotAllowed
	KindNoCompatibleStream
	KindRateLimited
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNotAllowed:
		return "not allowed"
	case KindNoCompatibleStream:
		return "no compatible stream"
	case KindRateLimited:
		return "rate limited"
	default:
		return "generic"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotAllowed:
		return ErrNotAllowed
	case KindNoCompatibleStream:
		return ErrNoCompatibleStream
	case KindRateLimited:
		return ErrRateLimited
	default:
		return nil
	}
}

// Error is a classified negotiation failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("negotiate stream (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindFromCode maps a server playback error code to a kind.
func KindFromCode(code string) Kind {
	switch code {
	case "NotAllowed":
		return KindNotAllowed
	case "NoCompatibleStream":
		return KindNoCompatibleStream
	case "RateLimitExceeded":
		return KindRateLimited
	default:
		return KindGeneric
	}
}

// Classify returns the kind of a negotiation error.
func Classify(err error) Kind {
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr.Kind
	}
	switch {
	case errors.Is(err, ErrNotAllowed):
		return KindNotAllowed
	case errors.Is(err, ErrNoCompatibleStream):
		return KindNoCompatibleStream
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	default:
		return KindGeneric
	}
}

func classified(err error) error {
	var nerr *Error
	if errors.As(err, &nerr) {
		return err
	}
	return &Error{Kind: Classify(err), Err: err}
}

// ac3Markers are substrings of server or decoder messages that point at an
// AC3 family audio track the client cannot handle.
var ac3Markers = []string{
	"ac3",
	"eac3",
	"eac3-joc",
	"eac3_joc",
	"audio codec not supported",
	"unsupported audio codec",
	"audio codec not recognized",
	"audio codec error",
	"audio track error",
	"audio playback failed",
	"audio renderer error",
	"audio initialization failed",
}

func isAC3Failure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return lo.SomeBy(ac3Markers, func(m string) bool { return strings.Contains(msg, m) })
}
