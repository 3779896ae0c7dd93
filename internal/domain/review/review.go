package review

import "time"

type Recommendation string

const (
	HighlyRecommend Recommendation = "highly_recommend"
	Recommend       Recommendation = "recommend"
	Revisit         Recommendation = "revisit"
	NotRecommend    Recommendation = "not_recommend"
)

func (r Recommendation) Valid() bool {
	switch r {
	case HighlyRecommend, Recommend, Revisit, NotRecommend:
		return true
	}
	return false
}

const (
	MinRating = 1.0
	MaxRating = 5.0
)

type Review struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_review_user_place" json:"user_id"`
	PlaceID uint `gorm:"not null;uniqueIndex:idx_review_user_place;index" json:"place_id"`

	Rating         float64         `gorm:"column:rating;not null" json:"rating"`
	Content        *string         `gorm:"column:content;type:text" json:"content"`
	Recommendation *Recommendation `gorm:"column:recommendation;size:32" json:"recommendation"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

// Stats is the derived rating aggregate of one place. Avg is only meaningful when Count > 0.
type Stats struct {
	PlaceID uint    `json:"place_id"`
	Avg     float64 `json:"avg_rating"`
	Count   int64   `json:"review_count"`
}
