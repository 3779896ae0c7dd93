package app

import (
	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type Repos struct {
	Place    repos.PlaceRepo
	Review   repos.ReviewRepo
	Session  repos.SessionRepo
	Feedback repos.FeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Place:    repos.NewPlaceRepo(db, log),
		Review:   repos.NewReviewRepo(db, log),
		Session:  repos.NewSessionRepo(db, log),
		Feedback: repos.NewFeedbackRepo(db, log),
	}
}
