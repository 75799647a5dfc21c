package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"ayurwell-backend/internal/config"
	"ayurwell-backend/internal/metrics"
	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/service"
)

// limiterIdle is how long an unused per-caller limiter is kept.
const limiterIdle = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller. Callers are keyed by
// authenticated subject, falling back to the client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	callers map[string]*callerLimiter
	now     func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:   burst,
		callers: make(map[string]*callerLimiter),
		now:     time.Now,
	}
}

// Allow consumes one token for key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for k, cl := range r.callers {
		if now.Sub(cl.lastSeen) > limiterIdle {
			delete(r.callers, k)
		}
	}

	cl, ok := r.callers[key]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.callers[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Middleware answers 429 with the same message the gateway's own rate limit
// produces, so clients handle both alike.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if claims := GetClaims(c); claims != nil && claims.Subject != "" {
			key = "sub:" + claims.Subject
		}

		if !r.Allow(key) {
			metrics.ObserveRequest("rate_limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{Error: service.MsgRateLimited})
			return
		}
		c.Next()
	}
}
