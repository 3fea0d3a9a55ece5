package clock

import "time"

// SystemClock returns the current wall-clock time in UTC.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

// Now truncates to microseconds, the resolution Postgres keeps for timestamptz.
func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
