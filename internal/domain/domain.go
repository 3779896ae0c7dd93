package domain

import (
	"github.com/Jacod97/taste-map/internal/domain/place"
	"github.com/Jacod97/taste-map/internal/domain/recommend"
	"github.com/Jacod97/taste-map/internal/domain/review"
)

type (
	Place      = place.Place
	Category   = place.Category
	Visibility = place.Visibility

	Review               = review.Review
	ReviewStats          = review.Stats
	ReviewRecommendation = review.Recommendation

	RecommendationSession  = recommend.RecommendationSession
	RecommendationFeedback = recommend.RecommendationFeedback
	Turn                   = recommend.Turn
)

const (
	VisibilityPrivate = place.VisibilityPrivate
	VisibilityPublic  = place.VisibilityPublic
	CategoryOther     = place.CategoryOther

	RoleUser      = recommend.RoleUser
	RoleAssistant = recommend.RoleAssistant

	FeedbackHelpful    = recommend.FeedbackHelpful
	FeedbackNotHelpful = recommend.FeedbackNotHelpful
	FeedbackNoAnswer   = recommend.FeedbackNoAnswer
)

// Models lists every persisted table, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Place{},
		&Review{},
		&RecommendationSession{},
		&RecommendationFeedback{},
	}
}
