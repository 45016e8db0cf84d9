package risk

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounterIncrement(t *testing.T) {
	c := NewDailyTradeCounter()

	assert.Equal(t, 0, c.Count())
	assert.Equal(t, 1, c.Increment())
	assert.Equal(t, 2, c.Increment())
	assert.Equal(t, 2, c.Count())
}

func TestCounterDayRollover(t *testing.T) {
	current := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	c := newDailyTradeCounter(func() time.Time { return current })

	c.Increment()
	c.Increment()
	assert.Equal(t, 2, c.Count())

	// Cross midnight, count resets
	current = time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 0, c.Count())
	assert.Equal(t, 1, c.Increment())
}

func TestCounterTryReserve(t *testing.T) {
	c := NewDailyTradeCounter()

	assert.True(t, c.TryReserve(2))
	assert.True(t, c.TryReserve(2))
	assert.False(t, c.TryReserve(2), "budget exhausted")
	assert.Equal(t, 2, c.Count())

	// A released slot can be claimed again
	c.Release()
	assert.Equal(t, 1, c.Count())
	assert.True(t, c.TryReserve(2))
}

func TestCounterConcurrentReserveNeverExceedsLimit(t *testing.T) {
	c := NewDailyTradeCounter()
	const limit = 5

	var wg sync.WaitGroup
	var reserved int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryReserve(limit) {
				atomic.AddInt64(&reserved, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), reserved)
	assert.Equal(t, limit, c.Count())
}

func TestCounterConcurrentIncrements(t *testing.T) {
	c := NewDailyTradeCounter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Increment()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, c.Count())
}
