package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/http/response"
	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/logger"
	"github.com/Jacod97/taste-map/internal/platform/ratelimit"
)

var errRateLimited = errors.New("요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")

// RateLimit keys by authenticated user, falling back to client IP.
// Limiter errors let the request through.
func RateLimit(log *logger.Logger, limiter ratelimit.Limiter, m *observability.Metrics, route string) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	mwLog := log.With("Middleware", "RateLimit", "route", route)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if uid := ctxutil.UserID(c.Request.Context()); uid != 0 {
			key = "user:" + strconv.FormatUint(uint64(uid), 10)
		}
		allowed, err := limiter.Allow(c.Request.Context(), route+":"+key)
		if err != nil {
			mwLog.Warn("Rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		if !allowed {
			m.IncRateLimited(route)
			response.AbortError(c, http.StatusTooManyRequests, "rate_limited", errRateLimited)
			return
		}
		c.Next()
	}
}
