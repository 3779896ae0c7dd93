package recommend

import (
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RecommendationSession struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	// Capability credential; unrelated to ID so sessions cannot be enumerated.
	AccessToken string `gorm:"column:access_token;size:64;not null;uniqueIndex" json:"-"`

	Messages datatypes.JSON `gorm:"column:messages;not null;default:'[]'" json:"messages"`
	Context  datatypes.JSON `gorm:"column:context;not null;default:'{}'" json:"context"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RecommendationSession) TableName() string { return "recommendation_sessions" }

// Turns decodes the stored history. An empty column reads as no turns.
func (s *RecommendationSession) Turns() ([]Turn, error) {
	if s == nil || len(s.Messages) == 0 {
		return []Turn{}, nil
	}
	var out []Turn
	if err := json.Unmarshal(s.Messages, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Turn{}
	}
	return out, nil
}

func (s *RecommendationSession) SetTurns(turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	s.Messages = datatypes.JSON(raw)
	return nil
}
