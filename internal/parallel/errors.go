// Package parallel holds small helpers for fan-out work.
package parallel

import "sync"

// ErrorCollector keeps the first non-nil error reported by concurrent
// goroutines. The zero value is ready to use.
type ErrorCollector struct {
	mu    sync.Mutex
	err   error
	count int
}

// SetError records err if it is the first non-nil error seen.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Count returns how many non-nil errors were reported, including the first.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset clears the collector.
func (c *ErrorCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
	c.count = 0
}

// Go runs fn in a goroutine tracked by wg and records its error.
func (c *ErrorCollector) Go(wg *sync.WaitGroup, fn func() error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetError(fn())
	}()
}
