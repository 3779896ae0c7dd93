package repos

import (
	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos/place"
	"github.com/Jacod97/taste-map/internal/data/repos/recommend"
	"github.com/Jacod97/taste-map/internal/data/repos/review"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type PlaceRepo = place.PlaceRepo
type PlaceBounds = place.Bounds
type PlaceSearchFilter = place.SearchFilter

type ReviewRepo = review.ReviewRepo

type SessionRepo = recommend.SessionRepo
type FeedbackRepo = recommend.FeedbackRepo

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return place.NewPlaceRepo(db, baseLog)
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return review.NewReviewRepo(db, baseLog)
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return recommend.NewSessionRepo(db, baseLog)
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return recommend.NewFeedbackRepo(db, baseLog)
}
