package media

import "time"

// Ticks is a position in 100-nanosecond units, as used by the media server.
type Ticks int64

// TicksPerMillisecond is the number of ticks in one millisecond.
const TicksPerMillisecond = 10_000

// ToTicks converts a duration to server ticks.
func ToTicks(d time.Duration) Ticks {
	return Ticks(d / 100)
}

// Duration converts ticks back to a duration.
func (t Ticks) Duration() time.Duration {
	return time.Duration(t) * 100
}

// Milliseconds returns the tick value in whole milliseconds.
func (t Ticks) Milliseconds() int64 {
	return int64(t) / TicksPerMillisecond
}
