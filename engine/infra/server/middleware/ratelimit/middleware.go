// Package ratelimit throttles API clients by IP with an in-process store.
package ratelimit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

type Manager struct {
	config  *Config
	limiter *limiter.Limiter
}

func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{config: cfg}
	if cfg.Enabled() {
		store := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          cfg.Prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
		m.limiter = limiter.New(store, cfg.Rate())
	}
	return m, nil
}

// Middleware rejects requests over the limit with 429. Excluded paths and
// a disabled config pass everything through.
func (m *Manager) Middleware() gin.HandlerFunc {
	if m.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	limit := mgin.NewMiddleware(m.limiter,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			recordBlocked(c.Request.Context(), c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "RATE_LIMITED", "message": "rate limit exceeded"},
			})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "INTERNAL_ERROR", "message": err.Error()},
			})
		}),
	)
	return func(c *gin.Context) {
		if slices.Contains(m.config.ExcludedPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		limit(c)
	}
}
