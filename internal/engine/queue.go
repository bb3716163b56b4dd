package engine

import "sync"

// envelope is a queued event stamped with its intake sequence number.
type envelope struct {
	seq   int64
	event Event
}

// intake is the engine's unbounded FIFO of pending events. Actions never
// block on Send, however many follow-ups a resolution fans out into.
//
// push stamps the event under the same lock that appends it, so queue
// order and seq order agree even with concurrent senders.
type intake struct {
	mu     sync.Mutex
	clock  *Clock
	events []envelope
	head   int
	closed bool
	signal chan struct{} // capacity 1; closed with the intake
}

func newIntake(clock *Clock) *intake {
	return &intake{
		clock:  clock,
		signal: make(chan struct{}, 1),
	}
}

// push appends ev and returns its seq. Returns false once closed.
func (q *intake) push(ev Event) (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, false
	}
	seq := q.clock.Next()
	q.events = append(q.events, envelope{seq: seq, event: ev})

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return seq, true
}

// pop removes the oldest event without blocking.
func (q *intake) pop() (envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.events) {
		return envelope{}, false
	}
	e := q.events[q.head]
	q.events[q.head] = envelope{}
	q.head++

	if q.head == len(q.events) {
		q.events, q.head = q.events[:0], 0
	} else if q.head >= 32 && q.head*2 >= len(q.events) {
		n := copy(q.events, q.events[q.head:])
		clear(q.events[n:])
		q.events, q.head = q.events[:n], 0
	}
	return e, true
}

// wake fires after a push, and stays ready once the intake is closed.
func (q *intake) wake() <-chan struct{} {
	return q.signal
}

func (q *intake) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) - q.head
}

// drained reports whether the intake is closed and empty.
func (q *intake) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && q.head == len(q.events)
}

// close stops intake. Queued events can still be popped.
func (q *intake) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
