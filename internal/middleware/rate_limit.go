package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimitMiddleware creates a rate limiting middleware using ulule/limiter.
// It allows 100 requests per minute per IP address.
func NewRateLimitMiddleware() gin.HandlerFunc {
	return NewRateLimitMiddlewareWithConfig(100, time.Minute)
}

// NewMutationRateLimitMiddleware creates a stricter rate limiting middleware for
// the routes that change greetings. It allows 20 requests per minute per IP address.
func NewMutationRateLimitMiddleware() gin.HandlerFunc {
	return NewRateLimitMiddlewareWithConfig(20, time.Minute)
}

// NewRateLimitMiddlewareWithConfig creates a rate limiting middleware with custom configuration
func NewRateLimitMiddlewareWithConfig(limit int64, period time.Duration) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance)
}
