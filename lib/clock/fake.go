// Copyright 2026 The Crowbot Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called. After and Sleep register pending
// waiters that fire when the clock advances past their deadline.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing. Time advances only
// when Advance or Set is called. Waiters registered by After and Sleep
// block until the clock is advanced past their deadline.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

// fakeWaiter is a pending After or Sleep operation.
type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time
}

// Now returns the fake clock's current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives the fire time once the clock
// has been advanced past the deadline. If d <= 0, the channel receives
// the current time immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Buffered so Advance never blocks on an unread waiter, matching
	// time.After's channel semantics.
	channel := make(chan time.Time, 1)
	deadline := c.current.Add(d)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{deadline: deadline, channel: channel})
	return channel
}

// Sleep blocks until another goroutine advances the clock past the
// deadline. Sleep(d) with d <= 0 returns immediately.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline has been reached, in registration order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.fireLocked()
	c.mu.Unlock()
}

// Set jumps the clock to an absolute time. Set to a time earlier than
// the current time leaves pending waiters untouched.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	if t.After(c.current) {
		c.current = t
	}
	c.fireLocked()
	c.mu.Unlock()
}

// fireLocked delivers to all waiters whose deadline has passed.
// Callers must hold c.mu.
func (c *FakeClock) fireLocked() {
	remaining := c.waiters[:0]
	for _, waiter := range c.waiters {
		if waiter.deadline.After(c.current) {
			remaining = append(remaining, waiter)
			continue
		}
		waiter.channel <- c.current
	}
	c.waiters = remaining
}
