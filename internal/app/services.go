package app

import (
	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/logger"
	"github.com/Jacod97/taste-map/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Sessions  services.SessionStore
	Place     services.PlaceService
	Review    services.ReviewService
	Recommend services.RecommendService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is empty; every authenticated request will be rejected")
	}
	authService := services.NewAuthService(log, cfg.JWTSecretKey)
	sessionStore := services.NewSessionStore(log, repos.Session)

	return Services{
		Auth:     authService,
		Sessions: sessionStore,
		Place:    services.NewPlaceService(db, log, repos.Place, repos.Review),
		Review:   services.NewReviewService(db, log, repos.Place, repos.Review),
		Recommend: services.NewRecommendService(
			db, log,
			services.RecommendConfig{
				Timeout:         cfg.RecommendTimeout,
				HistoryTurns:    cfg.RecommendHistoryTurns,
				ContextMaxChars: cfg.RecommendContextMaxChars,
			},
			sessionStore,
			repos.Place,
			repos.Review,
			repos.Feedback,
			clients.Generator,
			metrics,
		),
	}
}
