package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestClock_Stopped(t *testing.T) {
	clock := NewClock(start)
	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now(), "Now does not advance")
}

func TestClock_AdvanceAndSet(t *testing.T) {
	clock := NewClock(start)

	assert.Equal(t, start.Add(time.Minute), clock.Advance(time.Minute))
	assert.Equal(t, start.Add(time.Minute), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}

func TestClock_ConcurrentAdvance(t *testing.T) {
	clock := NewClock(start)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(100*time.Second), clock.Now())
}
