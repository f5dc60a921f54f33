package engine

import (
	"math"
	"sync"
)

// Clock supplies the logical time (block height) for an operation.
type Clock interface {
	Now() uint64
}

// ManualClock is a non-decreasing counter advanced between operations.
type ManualClock struct {
	mu     sync.Mutex
	height uint64
}

func NewManualClock(height uint64) *ManualClock {
	return &ManualClock{height: height}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Set moves the clock to height. Moving backwards is rejected.
func (c *ManualClock) Set(height uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if height < c.height {
		return ErrInvalidTimestamp
	}
	c.height = height
	return nil
}

// Advance moves the clock forward by n and returns the new height. A move
// past math.MaxUint64 is rejected and leaves the height unchanged.
func (c *ManualClock) Advance(n uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.height > math.MaxUint64-n {
		return c.height, ErrInvalidTimestamp
	}
	c.height += n
	return c.height, nil
}
