// Package ratelimiter limits how often a key (typically a client IP) may hit
// an endpoint.
//
// A Limiter pairs a Config with a Store. Two stores are provided:
//
//   - MemoryStore: a token bucket per key with continuous refill, suitable for
//     a single instance. A background sweeper evicts idle buckets.
//   - RedisStore: a fixed window counter per key backed by an atomic Lua
//     script, shared across instances.
//
// Middleware applies a Limiter to an http.Handler, sets the X-RateLimit-*
// headers and delegates the 429 body to a caller-supplied responder so each
// route keeps its own error envelope.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
//		ratelimiter.Config{Limit: 10, Window: time.Minute})
//	mux.Handle("/checkout", ratelimiter.Middleware(limiter, ratelimiter.ByClientIP)(checkout))
package ratelimiter
