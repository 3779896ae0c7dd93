package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/logger"
	"github.com/Jacod97/taste-map/internal/platform/ratelimit"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func withUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: id})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestRateLimitPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	limiter := ratelimit.NewMemory(ratelimit.Config{Limit: 1})

	do := func(userID uint) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/api/recommend", withUser(userID), RateLimit(logger.Nop(), limiter, m, "recommend"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/recommend", nil))
		return rec
	}

	if rec := do(1); rec.Code != http.StatusOK {
		t.Fatalf("first request status=%d", rec.Code)
	}
	rec := do(1)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status=%d want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"rate_limited"`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
	if rec := do(2); rec.Code != http.StatusOK {
		t.Fatalf("other user status=%d", rec.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", RateLimit(logger.Nop(), brokenLimiter{}, nil, "x"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rec.Code)
	}
}
