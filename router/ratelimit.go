package router

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client address. Idle buckets are
// swept lazily on the request path.
type rateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	maxIdle   time.Duration
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(cfg.RequestsPerSecond))
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}
	return &rateLimiter{
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   burst,
		maxIdle: maxIdle,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *rateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.maxIdle {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.maxIdle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func rateLimitMiddleware(cfg RateLimitConfig, onLimit LimitHandler) Middleware {
	limiter := newRateLimiter(cfg)
	if onLimit == nil {
		onLimit = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientKey(r), time.Now()) {
				w.Header().Set("Retry-After", "1")
				onLimit(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
