package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time only moves on Advance. It is safe for
// concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
	changed *sync.Cond
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.changed = sync.NewCond(&c.mu)
	return c
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After fires immediately when d <= 0. Otherwise the channel receives
// once the clock has been advanced past the deadline.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{deadline: c.current.Add(d), channel: channel})
	c.changed.Broadcast()
	return channel
}

// Advance moves the clock forward and fires expired waiters in deadline
// order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	var expired, pending []*fakeWaiter
	for _, w := range c.waiters {
		if w.deadline.After(now) {
			pending = append(pending, w)
		} else {
			expired = append(expired, w)
		}
	}
	c.waiters = pending
	c.changed.Broadcast()
	c.mu.Unlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].deadline.Before(expired[j].deadline)
	})
	for _, w := range expired {
		w.channel <- now
	}
}

// WaitForWaiters blocks until at least n waiters are pending. Tests use it
// to make sure a poller is parked before advancing.
func (c *FakeClock) WaitForWaiters(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.changed.Wait()
	}
}

// Waiters returns the number of pending waiters.
func (c *FakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
