package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/aqi-search/internal/infra/config"
)

// errorHandlingMiddleware renders the last handler error as {"error": message, "code": code}.
func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = http.StatusText(httpErr.Status)
		}

		attrs := []any{"code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request failed", attrs...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": message,
			"code":  httpErr.Code,
		})
	}
}

// rateLimitMiddleware throttles lookups per client address.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	buckets := newClientBuckets(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		wait, ok := buckets.take(ip)
		if ok {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please slow down.", nil))
	}
}

// clientBuckets is a token bucket per client address. Idle buckets are swept
// once per idleTTL.
type clientBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perSecond float64
	capacity  float64
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens  float64
	updated time.Time
}

func newClientBuckets(cfg config.RateLimitConfig, now func() time.Time) *clientBuckets {
	capacity := float64(cfg.Burst)
	if capacity < 1 {
		capacity = 1
	}
	return &clientBuckets{
		buckets:   make(map[string]*bucket),
		perSecond: float64(cfg.RequestsPerMinute) / 60,
		capacity:  capacity,
		idleTTL:   5 * time.Minute,
		lastSweep: now(),
		now:       now,
	}
}

// take consumes one token for key. When none is left it reports how long
// until the next token is available.
func (b *clientBuckets) take(key string) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.lastSweep) >= b.idleTTL {
		for k, v := range b.buckets {
			if now.Sub(v.updated) >= b.idleTTL {
				delete(b.buckets, k)
			}
		}
		b.lastSweep = now
	}

	entry, ok := b.buckets[key]
	if !ok {
		entry = &bucket{tokens: b.capacity, updated: now}
		b.buckets[key] = entry
	} else if elapsed := now.Sub(entry.updated).Seconds(); elapsed > 0 {
		entry.tokens = math.Min(b.capacity, entry.tokens+elapsed*b.perSecond)
		entry.updated = now
	}

	if entry.tokens >= 1 {
		entry.tokens--
		return 0, true
	}
	missing := 1 - entry.tokens
	return time.Duration(missing / b.perSecond * float64(time.Second)), false
}
