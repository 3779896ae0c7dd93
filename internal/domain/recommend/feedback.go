package recommend

import "time"

const (
	FeedbackHelpful    = 1
	FeedbackNotHelpful = -1
	FeedbackNoAnswer   = 0
)

// RecommendationFeedback rows are append-only.
type RecommendationFeedback struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint `gorm:"not null;index" json:"user_id"`
	SessionID uint `gorm:"not null;index" json:"session_id"`
	PlaceID   uint `gorm:"not null;index" json:"place_id"`

	IsHelpful int `gorm:"column:is_helpful;not null;default:0" json:"is_helpful"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RecommendationFeedback) TableName() string { return "recommendation_feedbacks" }
