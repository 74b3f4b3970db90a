package service

import "time"

// NewTokenBucketWithClock exposes a sweeper-less limiter driven by now.
func NewTokenBucketWithClock(rate, capacity float64, now func() time.Time) *TokenBucket {
	return newTokenBucket(rate, capacity, now)
}

// EvictIdle runs one sweep synchronously.
func (tb *TokenBucket) EvictIdle() { tb.evictIdle() }

// Buckets reports how many keys are tracked.
func (tb *TokenBucket) Buckets() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}
