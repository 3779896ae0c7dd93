package review

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const MaxPageSize = 100

type ReviewRepo interface {
	Create(dbc dbctx.Context, rv *types.Review) (*types.Review, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Review, error)
	ListByPlace(dbc dbctx.Context, placeID uint, skip, limit int) ([]*types.Review, error)
	ListByPlaceIDs(dbc dbctx.Context, placeIDs []uint) ([]*types.Review, error)
	ListByUser(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Review, error)
	ExistsForUser(dbc dbctx.Context, userID, placeID uint) (bool, error)
	Stats(dbc dbctx.Context, placeID uint) (types.ReviewStats, error)
	StatsByPlaceIDs(dbc dbctx.Context, placeIDs []uint) (map[uint]types.ReviewStats, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) error
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(dbc dbctx.Context, rv *types.Review) (*types.Review, error) {
	if rv == nil {
		return nil, fmt.Errorf("missing review")
	}
	if err := dbc.DB(r.db).Create(rv).Error; err != nil {
		return nil, err
	}
	return rv, nil
}

// GetByID returns (nil, nil) when the row does not exist.
func (r *reviewRepo) GetByID(dbc dbctx.Context, id uint) (*types.Review, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Review
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reviewRepo) ListByPlace(dbc dbctx.Context, placeID uint, skip, limit int) ([]*types.Review, error) {
	skip, limit = page(skip, limit)
	var out []*types.Review
	if err := dbc.DB(r.db).
		Where("place_id = ?", placeID).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByPlaceIDs loads all reviews of the given places in one query, oldest first.
func (r *reviewRepo) ListByPlaceIDs(dbc dbctx.Context, placeIDs []uint) ([]*types.Review, error) {
	if len(placeIDs) == 0 {
		return []*types.Review{}, nil
	}
	var out []*types.Review
	if err := dbc.DB(r.db).
		Where("place_id IN ?", placeIDs).
		Order("place_id ASC, created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ListByUser(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Review, error) {
	skip, limit = page(skip, limit)
	var out []*types.Review
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ExistsForUser(dbc dbctx.Context, userID, placeID uint) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.Review{}).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type statsRow struct {
	PlaceID uint
	Avg     *float64
	Cnt     int64
}

func (r *reviewRepo) Stats(dbc dbctx.Context, placeID uint) (types.ReviewStats, error) {
	m, err := r.StatsByPlaceIDs(dbc, []uint{placeID})
	if err != nil {
		return types.ReviewStats{}, err
	}
	if st, ok := m[placeID]; ok {
		return st, nil
	}
	return types.ReviewStats{PlaceID: placeID}, nil
}

// StatsByPlaceIDs aggregates in one grouped query. Places without reviews are absent from the map.
func (r *reviewRepo) StatsByPlaceIDs(dbc dbctx.Context, placeIDs []uint) (map[uint]types.ReviewStats, error) {
	out := make(map[uint]types.ReviewStats, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	var rows []statsRow
	if err := dbc.DB(r.db).
		Model(&types.Review{}).
		Select("place_id, AVG(rating) AS avg, COUNT(id) AS cnt").
		Where("place_id IN ?", placeIDs).
		Group("place_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		st := types.ReviewStats{PlaceID: row.PlaceID, Count: row.Cnt}
		if row.Avg != nil {
			st.Avg = *row.Avg
		}
		out[row.PlaceID] = st
	}
	return out, nil
}

func (r *reviewRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.Review{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *reviewRepo) Delete(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Review{}).Error
}

func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return skip, limit
}
