package place

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const MaxPageSize = 100

type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

type SearchFilter struct {
	Keyword   string
	Category  types.Category
	MinRating *float64
	OnlyMine  bool
	SortBy    string
	Skip      int
	Limit     int
}

type PlaceRepo interface {
	Create(dbc dbctx.Context, p *types.Place) (*types.Place, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Place, error)
	GetAccessible(dbc dbctx.Context, id uint, userID uint) (*types.Place, error)
	ListByUser(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Place, int64, error)
	ListAllByUser(dbc dbctx.Context, userID uint) ([]*types.Place, error)
	InBounds(dbc dbctx.Context, userID uint, b Bounds, includePublic bool) ([]*types.Place, error)
	Search(dbc dbctx.Context, userID uint, f SearchFilter) ([]*types.Place, int64, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uint) error
}

type placeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return &placeRepo{db: db, log: baseLog.With("repo", "PlaceRepo")}
}

func (r *placeRepo) Create(dbc dbctx.Context, p *types.Place) (*types.Place, error) {
	if p == nil {
		return nil, fmt.Errorf("missing place")
	}
	p.Category = p.Category.OrOther()
	if p.Visibility == "" {
		p.Visibility = types.VisibilityPublic
	}
	if err := dbc.DB(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns (nil, nil) when the row does not exist.
func (r *placeRepo) GetByID(dbc dbctx.Context, id uint) (*types.Place, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Place
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAccessible returns the place only if userID owns it or it is public.
func (r *placeRepo) GetAccessible(dbc dbctx.Context, id uint, userID uint) (*types.Place, error) {
	if id == 0 {
		return nil, nil
	}
	var out types.Place
	err := dbc.DB(r.db).
		Where("id = ?", id).
		Where("(user_id = ? OR visibility = ?)", userID, types.VisibilityPublic).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *placeRepo) ListByUser(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Place, int64, error) {
	skip, limit = page(skip, limit)
	q := dbc.DB(r.db).Model(&types.Place{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Place
	if err := q.Order("id ASC").Offset(skip).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAllByUser returns every place of userID, oldest first.
func (r *placeRepo) ListAllByUser(dbc dbctx.Context, userID uint) ([]*types.Place, error) {
	var out []*types.Place
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) InBounds(dbc dbctx.Context, userID uint, b Bounds, includePublic bool) ([]*types.Place, error) {
	q := dbc.DB(r.db).
		Where("latitude >= ? AND latitude <= ?", b.MinLat, b.MaxLat).
		Where("longitude >= ? AND longitude <= ?", b.MinLng, b.MaxLng)
	q = scopeVisible(q, userID, includePublic)

	var out []*types.Place
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) Search(dbc dbctx.Context, userID uint, f SearchFilter) ([]*types.Place, int64, error) {
	skip, limit := page(f.Skip, f.Limit)
	q := scopeVisible(dbc.DB(r.db).Model(&types.Place{}), userID, !f.OnlyMine)

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(memo) LIKE ? OR LOWER(tags) LIKE ?)", like, like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinRating != nil {
		sub := dbc.DB(r.db).
			Model(&types.Review{}).
			Select("place_id").
			Group("place_id").
			Having("AVG(rating) >= ?", *f.MinRating)
		q = q.Where("id IN (?)", sub)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.SortBy {
	case "name":
		q = q.Order("name ASC")
	case "visited_at":
		q = q.Order("visited_at DESC")
	default:
		q = q.Order("created_at DESC")
	}
	q = q.Order("id DESC")

	var out []*types.Place
	if err := q.Offset(skip).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *placeRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.Place{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the place together with its reviews.
func (r *placeRepo) Delete(dbc dbctx.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("missing id")
	}
	run := func(tx *gorm.DB) error {
		if err := tx.Where("place_id = ?", id).Delete(&types.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&types.Place{}).Error
	}
	if dbc.Tx != nil {
		return run(dbc.DB(r.db))
	}
	return dbc.DB(r.db).Transaction(run)
}

func scopeVisible(q *gorm.DB, userID uint, includePublic bool) *gorm.DB {
	if includePublic {
		return q.Where("(user_id = ? OR visibility = ?)", userID, types.VisibilityPublic)
	}
	return q.Where("user_id = ?", userID)
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
