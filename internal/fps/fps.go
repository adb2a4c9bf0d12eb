// Package fps measures the frame rate of the capture loop.
package fps

import (
	"math"
	"sync"
	"time"
)

// DefaultBufferLen is the number of frame intervals averaged by default.
const DefaultBufferLen = 10

// Counter computes frames per second as a moving average over the last
// few frame intervals.
type Counter struct {
	mu        sync.Mutex
	now       func() time.Time
	last      time.Time
	intervals []time.Duration
	index     int
	count     int
	current   float64
}

// NewCounter creates a Counter averaging over bufferLen intervals.
// Non-positive lengths use DefaultBufferLen.
func NewCounter(bufferLen int) *Counter {
	return newCounter(bufferLen, time.Now)
}

func newCounter(bufferLen int, now func() time.Time) *Counter {
	if bufferLen <= 0 {
		bufferLen = DefaultBufferLen
	}
	return &Counter{
		now:       now,
		last:      now(),
		intervals: make([]time.Duration, bufferLen),
	}
}

// Tick records a frame and returns the current rate rounded to two decimals.
func (c *Counter) Tick() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	c.intervals[c.index] = t.Sub(c.last)
	c.last = t
	c.index = (c.index + 1) % len(c.intervals)
	if c.count < len(c.intervals) {
		c.count++
	}

	var total time.Duration
	for i := 0; i < c.count; i++ {
		total += c.intervals[i]
	}
	if total <= 0 {
		c.current = 0
		return 0
	}

	avg := total.Seconds() / float64(c.count)
	c.current = math.Round(100/avg) / 100
	return c.current
}

// FPS returns the rate computed by the last Tick.
func (c *Counter) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
