package recommend

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

// FeedbackRepo is insert-only; rows are never updated or deleted.
type FeedbackRepo interface {
	Create(dbc dbctx.Context, f *types.RecommendationFeedback) (*types.RecommendationFeedback, error)
	ListBySession(dbc dbctx.Context, sessionID uint) ([]*types.RecommendationFeedback, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Create(dbc dbctx.Context, f *types.RecommendationFeedback) (*types.RecommendationFeedback, error) {
	if f == nil {
		return nil, fmt.Errorf("missing feedback")
	}
	if f.SessionID == 0 || f.PlaceID == 0 {
		return nil, fmt.Errorf("feedback requires session_id and place_id")
	}
	if err := dbc.DB(r.db).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

func (r *feedbackRepo) ListBySession(dbc dbctx.Context, sessionID uint) ([]*types.RecommendationFeedback, error) {
	var out []*types.RecommendationFeedback
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
