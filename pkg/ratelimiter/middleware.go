package ratelimiter

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/nextweekend/nextweekend/pkg/clientip"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

// KeyFunc derives the limiter key from a request. Empty keys skip limiting.
type KeyFunc func(r *http.Request) string

// ByClientIP keys on the address resolved by clientip.Middleware, falling back
// to resolving it from the request.
func ByClientIP(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return ip
	}
	return clientip.FromRequest(r)
}

// Prefixed namespaces another KeyFunc so routes do not share buckets.
func Prefixed(prefix string, fn KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		if k := fn(r); k != "" {
			return prefix + ":" + k
		}
		return ""
	}
}

type middlewareOptions struct {
	onLimited http.HandlerFunc
	logger    *slog.Logger
}

type MiddlewareOption func(*middlewareOptions)

// WithLimitedHandler writes the 429 response. Headers are already set.
func WithLimitedHandler(h http.HandlerFunc) MiddlewareOption {
	return func(o *middlewareOptions) { o.onLimited = h }
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(o *middlewareOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Middleware rejects requests over the limit with 429.
// Store failures fail open: the request proceeds and the error is logged.
func Middleware(l *Limiter, keyFn KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := &middlewareOptions{
		onLimited: func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), key)
			if err != nil {
				o.logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					logger.Component("ratelimiter"),
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter(time.Now()).Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				o.onLimited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
