package data

import "time"

// Clock returns the current wall time. Injected so that tests and scenario
// runs produce stable timestamps.
type Clock func() time.Time

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
