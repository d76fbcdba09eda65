package app

import (
	"sync"
	"time"
)

// Clock reports time elapsed since the loop started.
type Clock interface {
	Elapsed() time.Duration
}

// RealClock follows the wall clock from its creation.
type RealClock struct {
	start time.Time
}

func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

func (c *RealClock) Elapsed() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when advanced. The headless driver and tests use
// it for reproducible frames.
type ManualClock struct {
	mu sync.Mutex
	t  time.Duration
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t += d
	c.mu.Unlock()
}

func (c *ManualClock) Set(t time.Duration) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}
