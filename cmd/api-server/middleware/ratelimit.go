package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/internal/common"
	"github.com/nosmoke-app/backend/pkg/types"
)

// RateLimit rejects clients exceeding perMinute requests within a fixed
// one-minute window, keyed by client IP. Redis failures fail open so the
// limiter never takes the API down with it.
func RateLimit(cache *common.Cache, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		ok, err := cache.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, types.Failure(types.CodeRateLimited, "too many requests"))
			c.Abort()
			return
		}

		c.Next()
	}
}
