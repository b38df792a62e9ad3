// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import "sync"

// checkResult pairs a verdict with the reason behind it.
type checkResult struct {
	valid  bool
	reason string
}

// Cache memoizes existence-check results for one process lifetime, keyed
// by "source:source_id". Safe for concurrent use by the worker pool.
type Cache struct {
	mu      sync.Mutex
	results map[string]checkResult
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{results: make(map[string]checkResult)}
}

// GetOrCompute returns the cached verdict and reason for key, computing
// and storing them on a miss. compute runs outside the lock; two
// goroutines racing on the same key may both compute, with the later
// store winning. Existence checks are idempotent so the duplicate work
// is harmless.
func (c *Cache) GetOrCompute(key string, compute func() (bool, string)) (bool, string) {
	c.mu.Lock()
	if r, ok := c.results[key]; ok {
		c.mu.Unlock()
		return r.valid, r.reason
	}
	c.mu.Unlock()

	valid, reason := compute()

	c.mu.Lock()
	c.results[key] = checkResult{valid: valid, reason: reason}
	c.mu.Unlock()
	return valid, reason
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
