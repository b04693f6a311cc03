package ratelimiter

import (
	"context"
	"math"
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// MemoryStore keeps one token bucket per key in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time

	idleTTL  time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.now = now }
}

// WithIdleTTL sets how long an untouched bucket survives. Zero disables the sweeper.
func WithIdleTTL(ttl time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) { ms.idleTTL = ttl }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		idleTTL: time.Hour,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.idleTTL > 0 {
		go ms.sweep()
	}
	return ms
}

func (ms *MemoryStore) Take(_ context.Context, key string, cfg Config) (Result, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	rate := float64(cfg.Limit) / float64(cfg.Window)

	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(cfg.Limit), lastRefill: now}
		ms.buckets[key] = b
	}

	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens = math.Min(float64(cfg.Limit), b.tokens+float64(elapsed)*rate)
		b.lastRefill = now
	}

	res := Result{Limit: cfg.Limit}
	if b.tokens >= 1 {
		b.tokens--
		res.Allowed = true
	}
	res.Remaining = int(math.Floor(b.tokens))

	// Time until one whole token is available again.
	missing := 1 - (b.tokens - math.Floor(b.tokens))
	res.ResetAt = now.Add(time.Duration(math.Ceil(missing / rate)))
	return res, nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
	return nil
}

// Close stops the sweeper. Safe to call more than once.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) sweep() {
	ticker := time.NewTicker(ms.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ms.mu.Lock()
			cutoff := ms.now().Add(-ms.idleTTL)
			for k, b := range ms.buckets {
				if b.lastRefill.Before(cutoff) {
					delete(ms.buckets, k)
				}
			}
			ms.mu.Unlock()
		case <-ms.stop:
			return
		}
	}
}
