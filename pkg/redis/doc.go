// Package redis opens a go-redis client from a URL and exposes a readiness
// probe. It backs the shared rate limiter when RATE_LIMIT_STORE=redis.
package redis
