package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiterConfig controls the public API rate limiter.
//
// Rate uses limiter's format, e.g. "100-M", "10-S".
// SkipPaths are prefix-matched, e.g. ["/health", "/metrics"].
// Store is in-memory; SetRateLimiterStore can inject an external one
// (e.g. redis-backed) before the middleware is built.
type RateLimiterConfig struct {
	Rate        string   `json:"rate"`
	SkipPaths   []string `json:"skip_paths"`
	AddHeaders  bool     `json:"add_headers"`
	DenyStatus  int      `json:"deny_status"` // default 429
	DenyMessage string   `json:"deny_message"`
}

var (
	configMu      sync.RWMutex
	currentConfig = RateLimiterConfig{
		Rate:       "100-M",
		SkipPaths:  []string{"/health", "/metrics"},
		AddHeaders: true,
	}
	storeOverride limiter.Store
)

// SetRateLimiterConfig replaces the active limiter config.
func SetRateLimiterConfig(cfg RateLimiterConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = cfg
}

// SetRateLimiterStore injects an external limiter store.
func SetRateLimiterStore(store limiter.Store) {
	configMu.Lock()
	defer configMu.Unlock()
	storeOverride = store
}

// RateLimiter limits requests per client IP.
func RateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	SetRateLimiterConfig(cfg)

	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		// unparseable rate: run without limiting rather than refusing traffic
		return func(c *gin.Context) { c.Next() }
	}

	configMu.RLock()
	store := storeOverride
	configMu.RUnlock()
	if store == nil {
		store = memory.NewStore()
	}
	instance := limiter.New(store, rate)

	return func(c *gin.Context) {
		configMu.RLock()
		conf := currentConfig
		configMu.RUnlock()

		for _, prefix := range conf.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		limiterCtx, err := instance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}

		if conf.AddHeaders {
			c.Header("X-RateLimit-Limit", strconv.FormatInt(limiterCtx.Limit, 10))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(limiterCtx.Remaining, 10))
			c.Header("X-RateLimit-Reset", strconv.FormatInt(limiterCtx.Reset, 10))
		}

		if limiterCtx.Reached {
			status := conf.DenyStatus
			if status == 0 {
				status = http.StatusTooManyRequests
			}
			message := conf.DenyMessage
			if message == "" {
				message = "rate limit exceeded"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Next()
	}
}
