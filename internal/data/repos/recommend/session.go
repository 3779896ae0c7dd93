package recommend

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.RecommendationSession) (*types.RecommendationSession, error)
	GetByTokenForUser(dbc dbctx.Context, token string, userID uint) (*types.RecommendationSession, error)
	LockByID(dbc dbctx.Context, id uint) (*types.RecommendationSession, error)
	AppendTurns(dbc dbctx.Context, id uint, turns ...types.Turn) (*types.RecommendationSession, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.RecommendationSession) (*types.RecommendationSession, error) {
	if s == nil {
		return nil, fmt.Errorf("missing session")
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("missing access_token")
	}
	if len(s.Messages) == 0 {
		s.Messages = []byte("[]")
	}
	if len(s.Context) == 0 {
		s.Context = []byte("{}")
	}
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetByTokenForUser matches on token and owner together; (nil, nil) when either differs.
func (r *sessionRepo) GetByTokenForUser(dbc dbctx.Context, token string, userID uint) (*types.RecommendationSession, error) {
	if token == "" {
		return nil, nil
	}
	var out types.RecommendationSession
	err := dbc.DB(r.db).
		Where("access_token = ? AND user_id = ?", token, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) LockByID(dbc dbctx.Context, id uint) (*types.RecommendationSession, error) {
	if id == 0 {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.RecommendationSession
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// AppendTurns locks the row, appends turns to the stored history and persists it
// in one transaction. It joins dbc.Tx when present.
func (r *sessionRepo) AppendTurns(dbc dbctx.Context, id uint, turns ...types.Turn) (*types.RecommendationSession, error) {
	var out *types.RecommendationSession
	run := func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		s, err := r.LockByID(inner, id)
		if err != nil {
			return err
		}
		history, err := s.Turns()
		if err != nil {
			return fmt.Errorf("decode session messages: %w", err)
		}
		history = append(history, turns...)
		if err := s.SetTurns(history); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&types.RecommendationSession{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"messages":   s.Messages,
				"updated_at": s.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		out = s
		return nil
	}

	var err error
	if dbc.Tx != nil {
		err = run(dbc.DB(r.db))
	} else {
		err = dbc.DB(r.db).Transaction(run)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
