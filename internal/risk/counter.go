package risk

import (
	"sync"
	"time"
)

// DailyTradeCounter tracks how many orders were actually submitted
// today. It is owned by the caller's run scope, not a process-wide
// singleton, and rolls over at the calendar day boundary. All access
// goes through the mutex so two concurrent runs can never both read
// a stale count and collectively exceed the daily cap.
type DailyTradeCounter struct {
	mu    sync.Mutex
	day   time.Time
	count int
	now   func() time.Time
}

// NewDailyTradeCounter creates a counter starting at zero for today
func NewDailyTradeCounter() *DailyTradeCounter {
	return newDailyTradeCounter(time.Now)
}

func newDailyTradeCounter(now func() time.Time) *DailyTradeCounter {
	c := &DailyTradeCounter{now: now}
	c.day = dayOf(now())
	return c
}

// Count returns today's submitted trade count
func (c *DailyTradeCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	return c.count
}

// Increment records a submitted trade and returns the new count.
// Used to seed the counter from the order log at startup.
func (c *DailyTradeCounter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	c.count++
	return c.count
}

// TryReserve claims one slot of today's budget if any remain. The
// check and the increment happen under one lock, so concurrent
// callers at limit-1 cannot both pass. The caller must Release the
// slot if the order is not actually submitted.
func (c *DailyTradeCounter) TryReserve(limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	if c.count >= limit {
		return false
	}
	c.count++
	return true
}

// Release returns a reserved slot after a failed submission
func (c *DailyTradeCounter) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	if c.count > 0 {
		c.count--
	}
}

// rollover resets the count when the calendar day changed.
// Caller must hold the mutex.
func (c *DailyTradeCounter) rollover() {
	today := dayOf(c.now())
	if !today.Equal(c.day) {
		c.day = today
		c.count = 0
	}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
