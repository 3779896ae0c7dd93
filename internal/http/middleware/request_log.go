package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

// RequestLogger writes one access line per request; the level follows the status class.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	accessLog := log.With("Middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		ctx := c.Request.Context()
		if td := ctxutil.GetTraceData(ctx); td != nil {
			kv = append(kv, "request_id", td.RequestID)
			if td.TraceID != "" {
				kv = append(kv, "trace_id", td.TraceID)
			}
		}
		if uid := ctxutil.UserID(ctx); uid != 0 {
			kv = append(kv, "user_id", uid)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			kv = append(kv, "errors", errs.String())
		}

		switch {
		case status >= 500:
			accessLog.Error("HTTP request", kv...)
		case status >= 400:
			accessLog.Warn("HTTP request", kv...)
		default:
			accessLog.Debug("HTTP request", kv...)
		}
	}
}
