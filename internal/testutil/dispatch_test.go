package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/authflow/internal/engine"
)

type ping struct{ n int }

func (ping) Type() string { return "test.ping" }

func TestRecorder_KeepsOrder(t *testing.T) {
	r := &Recorder{}
	assert.Nil(t, r.Last())

	assert.True(t, r.Send(ping{1}))
	assert.True(t, r.Send(ping{2}))

	assert.Equal(t, []engine.Event{ping{1}, ping{2}}, r.Events())
	assert.Equal(t, []string{"test.ping", "test.ping"}, r.Types())
	assert.Equal(t, ping{2}, r.Last())
}

func TestRecorder_ThreadSafe(t *testing.T) {
	r := &Recorder{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Send(ping{i})
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Events(), 1000)
}
