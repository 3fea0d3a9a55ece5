package clock

import "time"

// Clock stamps scout creation times.
// Tests swap in a manual clock so created_at values are deterministic.
type Clock interface {
	Now() time.Time
}
