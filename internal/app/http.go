package app

import (
	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/http"
	httpH "github.com/Jacod97/taste-map/internal/http/handlers"
	httpMW "github.com/Jacod97/taste-map/internal/http/middleware"
	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Place     *httpH.PlaceHandler
	Review    *httpH.ReviewHandler
	Recommend *httpH.RecommendHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Place:     httpH.NewPlaceHandler(services.Place),
		Review:    httpH.NewReviewHandler(services.Review),
		Recommend: httpH.NewRecommendHandler(services.Recommend),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, clients Clients, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		Metrics:          metrics,
		AuthMiddleware:   middleware.Auth,
		RecommendLimit:   httpMW.RateLimit(log, clients.RecommendLimiter, metrics, "recommend"),
		PlaceHandler:     handlers.Place,
		ReviewHandler:    handlers.Review,
		RecommendHandler: handlers.Recommend,
		HealthHandler:    handlers.Health,
	})
}
