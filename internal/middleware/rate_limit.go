// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

// bucketIdleEviction is how long a client may stay silent before its
// bucket is dropped from the map.
const bucketIdleEviction = 3 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter applies one token bucket per client IP. Idle buckets are
// pruned so the map does not grow with every address ever seen.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	refill  time.Duration
	burst   int
}

// NewIPRateLimiter builds a limiter that refills one token per refill
// interval up to burst tokens, tracked per client IP.
func NewIPRateLimiter(refill time.Duration, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		clients: make(map[string]*clientBucket),
		refill:  refill,
		burst:   burst,
	}
	go l.prune()
	return l
}

func (l *IPRateLimiter) prune() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		l.mu.Lock()
		for ip, b := range l.clients {
			if time.Since(b.lastSeen) > bucketIdleEviction {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *IPRateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rate.Every(l.refill), l.burst)}
		l.clients[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// Handler rejects callers that exhausted their bucket with 429 in the
// standard response envelope.
func (l *IPRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.bucket(c.ClientIP()).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiters groups the three buckets the router installs: a general
// per-second limit on everything, and tighter per-minute limits on the
// auth and upload endpoints.
type RateLimiters struct {
	General *IPRateLimiter
	Auth    *IPRateLimiter
	Upload  *IPRateLimiter
}

func NewRateLimiters(cfg config.RateLimitConfig) *RateLimiters {
	return &RateLimiters{
		General: NewIPRateLimiter(time.Second, cfg.GeneralBurst),
		Auth:    NewIPRateLimiter(time.Minute, cfg.AuthPerMinute),
		Upload:  NewIPRateLimiter(time.Minute, cfg.UploadPerMinute),
	}
}
