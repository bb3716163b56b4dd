package engine

import "sync/atomic"

// Clock stamps every accepted event with a strictly increasing sequence
// number. Transitions carry the number of the event that produced them, so
// traces order by seq rather than wall time.
//
// Safe for concurrent use: Send may be called from any action goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next() returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that continues after start.
// Used when a recorded transition log is resumed.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
