package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout = 10 * time.Minute
	limiterPruneEvery  = 5 * time.Minute
)

// visitor tracks one client's limiter for one budget and when it last hit it
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterRegistry hands out per-client rate limiters and prunes the ones
// that go idle. One registry serves every rate-limited route group; a client
// hitting groups with different budgets is tracked once per budget.
type limiterRegistry struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	pruneOnce sync.Once
	stop      chan struct{}
	stopOnce  sync.Once
}

func newLimiterRegistry() *limiterRegistry {
	return &limiterRegistry{
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
}

// Limit returns middleware enforcing rps with the given burst per client IP
func (r *limiterRegistry) Limit(rps, burst int) gin.HandlerFunc {
	r.pruneOnce.Do(func() { go r.pruneLoop() })

	return func(c *gin.Context) {
		if !r.allow(c.ClientIP(), rps, burst) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"message": "Rate limit exceeded. Please slow down your requests.",
			})
			return
		}
		c.Next()
	}
}

func (r *limiterRegistry) allow(clientIP string, rps, burst int) bool {
	key := fmt.Sprintf("%s|%d/%d", clientIP, rps, burst)

	r.mu.Lock()
	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
		r.visitors[key] = v
	}
	v.lastSeen = time.Now()
	r.mu.Unlock()

	return v.limiter.Allow()
}

func (r *limiterRegistry) pruneLoop() {
	ticker := time.NewTicker(limiterPruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.prune(time.Now())
		case <-r.stop:
			return
		}
	}
}

// prune drops visitors idle longer than limiterIdleTimeout
func (r *limiterRegistry) prune(now time.Time) {
	r.mu.Lock()
	for key, v := range r.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTimeout {
			delete(r.visitors, key)
		}
	}
	r.mu.Unlock()
}

// Close stops the prune goroutine; safe to call repeatedly
func (r *limiterRegistry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// CORS allows browser clients on other origins to call the API and read the
// caching headers the response middleware sets
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		c.Header("Access-Control-Expose-Headers", "X-Cache, ETag, Age")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestSizeLimitWithSize caps mutating request bodies at maxBytes. The cap
// must cover the largest accepted media upload.
func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
