package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Jacod97/taste-map/internal/http/handlers"
	httpMW "github.com/Jacod97/taste-map/internal/http/middleware"
	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware
	// RecommendLimit guards POST /recommend; nil disables it.
	RecommendLimit gin.HandlerFunc

	PlaceHandler     *httpH.PlaceHandler
	ReviewHandler    *httpH.ReviewHandler
	RecommendHandler *httpH.RecommendHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Places
		if cfg.PlaceHandler != nil {
			protected.POST("/places", cfg.PlaceHandler.CreatePlace)
			protected.GET("/places", cfg.PlaceHandler.ListMyPlaces)
			protected.GET("/places/bounds", cfg.PlaceHandler.ListInBounds)
			protected.GET("/places/nearby", cfg.PlaceHandler.ListNearby)
			protected.GET("/places/search", cfg.PlaceHandler.SearchPlaces)
			protected.GET("/places/:id", cfg.PlaceHandler.GetPlace)
			protected.PUT("/places/:id", cfg.PlaceHandler.UpdatePlace)
			protected.DELETE("/places/:id", cfg.PlaceHandler.DeletePlace)
		}

		// Reviews
		if cfg.ReviewHandler != nil {
			protected.POST("/reviews", cfg.ReviewHandler.CreateReview)
			protected.GET("/reviews/my", cfg.ReviewHandler.ListMyReviews)
			protected.GET("/reviews/place/:place_id", cfg.ReviewHandler.ListPlaceReviews)
			protected.GET("/reviews/place/:place_id/stats", cfg.ReviewHandler.GetPlaceStats)
			protected.GET("/reviews/:id", cfg.ReviewHandler.GetReview)
			protected.PUT("/reviews/:id", cfg.ReviewHandler.UpdateReview)
			protected.DELETE("/reviews/:id", cfg.ReviewHandler.DeleteReview)
		}

		// Recommend
		if cfg.RecommendHandler != nil {
			recommendChain := []gin.HandlerFunc{}
			if cfg.RecommendLimit != nil {
				recommendChain = append(recommendChain, cfg.RecommendLimit)
			}
			recommendChain = append(recommendChain, cfg.RecommendHandler.Recommend)
			protected.POST("/recommend", recommendChain...)
			protected.POST("/recommend/feedback", cfg.RecommendHandler.SubmitFeedback)
			protected.GET("/recommend/sessions/:token", cfg.RecommendHandler.GetSession)
		}
	}

	return r
}
