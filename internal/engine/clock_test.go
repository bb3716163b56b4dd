package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_StartsAtZero(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next(), "first seq is 1")
}

func TestClock_NewClockAt_ContinuesAfterStart(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(41), c.Current())
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_Next_StrictlyIncreasing(t *testing.T) {
	c := NewClock()

	prev := int64(0)
	for i := 0; i < 500; i++ {
		seq := c.Next()
		assert.Greater(t, seq, prev)
		prev = seq
	}
	assert.Equal(t, prev, c.Current(), "Current must not advance the clock")
}

func TestClock_ConcurrentSendersGetUniqueSeqs(t *testing.T) {
	c := NewClock()
	const senders = 50
	const perSender = 200

	var wg sync.WaitGroup
	seqs := make(chan int64, senders*perSender)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				seqs <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool, senders*perSender)
	for seq := range seqs {
		assert.False(t, seen[seq], "seq %d issued twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, senders*perSender)
}
