package middleware

import (
	"fmt"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/utils"
	"github.com/theia-io/drivebetter-sub000/pkg/cache"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RateLimiter throttles requests per user over a fixed window, backed by
// Redis so limits hold across instances. A nil cache disables limiting.
type RateLimiter struct {
	cache  *cache.RedisCache
	limit  int64
	window time.Duration
}

func NewRateLimiter(cache *cache.RedisCache, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		limit:  limit,
		window: window,
	}
}

// Limit returns a middleware enforcing the limiter's budget for the named
// action. Redis failures let the request through rather than blocking
// traffic on cache outages.
func (r *RateLimiter) Limit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil || r.cache == nil {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(primitive.ObjectID); ok {
				subject = id.Hex()
			}
		}

		key := fmt.Sprintf("rate:%s:%s", action, subject)
		count, err := r.cache.IncrementWithExpiry(c.Request.Context(), key, r.window)
		if err != nil {
			c.Next()
			return
		}

		if count > r.limit {
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
