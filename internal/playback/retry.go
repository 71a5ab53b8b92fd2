package playback

import "time"

const (
	// errorWindow is how long an error counts toward the retry budget.
	errorWindow = 30 * time.Second
	// maxErrors is the error count at which playback gives up.
	maxErrors = 3
)

// errorBudget counts render errors within a sliding window.
type errorBudget struct {
	count int
	last  time.Time
}

// record notes an error at now and reports whether another attempt is
// allowed. A gap longer than errorWindow since the previous error resets
// the count first.
func (b *errorBudget) record(now time.Time) bool {
	if !b.last.IsZero() && now.Sub(b.last) > errorWindow {
		b.count = 0
	}
	b.count++
	b.last = now
	return b.count < maxErrors
}

func (b *errorBudget) reset() {
	b.count = 0
	b.last = time.Time{}
}
