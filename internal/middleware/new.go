package middleware

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"support-logbook/pkg/log"
)

// Middleware bundles the HTTP middlewares guarding the webhook endpoint.
type Middleware struct {
	l             log.Logger
	webhookSecret string
	rateLimiter   *rateLimiter
}

func New(l log.Logger, webhookSecret string, rateLimitPerMin int) Middleware {
	return Middleware{
		l:             l,
		webhookSecret: webhookSecret,
		rateLimiter:   newRateLimiter(rateLimitPerMin),
	}
}

// rateLimiter tracks per-source token buckets with auto-cleanup.
type rateLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(requestsPerMin int) *rateLimiter {
	burst := requestsPerMin / 10
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](
			1000,          // max unique sources
			nil,           // no eviction callback
			time.Minute*5, // TTL
		),
		rate:  rate.Limit(float64(requestsPerMin) / 60.0),
		burst: burst,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}
