package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/modules/recommend"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const (
	kmPerDegree           = 111.0
	DefaultNearbyRadiusKm = 1.0
)

// PlaceView is a place plus its derived review aggregate.
type PlaceView struct {
	types.Place
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int64    `json:"review_count"`
}

type PlaceInput struct {
	Name       string
	Category   types.Category
	Latitude   float64
	Longitude  float64
	Address    *string
	Memo       *string
	Tags       *string
	VisitedAt  *time.Time
	Visibility types.Visibility
}

// PlaceUpdate is a partial update; nil fields are left untouched.
type PlaceUpdate struct {
	Name       *string
	Category   *types.Category
	Latitude   *float64
	Longitude  *float64
	Address    *string
	Memo       *string
	Tags       *string
	VisitedAt  *time.Time
	Visibility *types.Visibility
}

type PlaceService interface {
	Create(dbc dbctx.Context, userID uint, in PlaceInput) (*PlaceView, error)
	ListMine(dbc dbctx.Context, userID uint, skip, limit int) ([]*PlaceView, int64, error)
	InBounds(dbc dbctx.Context, userID uint, b repos.PlaceBounds, includePublic bool) ([]*PlaceView, error)
	Nearby(dbc dbctx.Context, userID uint, lat, lng, radiusKm float64, includePublic bool) ([]*PlaceView, error)
	Search(dbc dbctx.Context, userID uint, f repos.PlaceSearchFilter) ([]*PlaceView, int64, error)
	Get(dbc dbctx.Context, userID uint, id uint) (*PlaceView, error)
	Update(dbc dbctx.Context, userID uint, id uint, in PlaceUpdate) (*PlaceView, error)
	Delete(dbc dbctx.Context, userID uint, id uint) error
}

type placeService struct {
	db      *gorm.DB
	log     *logger.Logger
	places  repos.PlaceRepo
	reviews repos.ReviewRepo
}

func NewPlaceService(db *gorm.DB, baseLog *logger.Logger, places repos.PlaceRepo, reviews repos.ReviewRepo) PlaceService {
	return &placeService{
		db:      db,
		log:     baseLog.With("service", "PlaceService"),
		places:  places,
		reviews: reviews,
	}
}

func (s *placeService) Create(dbc dbctx.Context, userID uint, in PlaceInput) (*PlaceView, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	p := &types.Place{
		UserID:     userID,
		Name:       strings.TrimSpace(in.Name),
		Category:   in.Category.OrOther(),
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		Address:    in.Address,
		Memo:       in.Memo,
		Tags:       in.Tags,
		VisitedAt:  in.VisitedAt,
		Visibility: in.Visibility,
	}
	created, err := s.places.Create(dbc, p)
	if err != nil {
		return nil, fmt.Errorf("create place: %w", err)
	}
	s.log.Debug("Place created", "place_id", created.ID, "user_id", userID)
	return &PlaceView{Place: *created}, nil
}

func (s *placeService) ListMine(dbc dbctx.Context, userID uint, skip, limit int) ([]*PlaceView, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotAuthenticated
	}
	rows, total, err := s.places.ListByUser(dbc, userID, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.enrich(dbc, rows)
	return out, total, err
}

func (s *placeService) InBounds(dbc dbctx.Context, userID uint, b repos.PlaceBounds, includePublic bool) ([]*PlaceView, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	rows, err := s.places.InBounds(dbc, userID, b, includePublic)
	if err != nil {
		return nil, err
	}
	return s.enrich(dbc, rows)
}

// Nearby approximates the radius with a degree box (1° ≈ 111 km on both axes).
func (s *placeService) Nearby(dbc dbctx.Context, userID uint, lat, lng, radiusKm float64, includePublic bool) ([]*PlaceView, error) {
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	delta := radiusKm / kmPerDegree
	return s.InBounds(dbc, userID, repos.PlaceBounds{
		MinLat: lat - delta,
		MaxLat: lat + delta,
		MinLng: lng - delta,
		MaxLng: lng + delta,
	}, includePublic)
}

func (s *placeService) Search(dbc dbctx.Context, userID uint, f repos.PlaceSearchFilter) ([]*PlaceView, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotAuthenticated
	}
	rows, total, err := s.places.Search(dbc, userID, f)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.enrich(dbc, rows)
	return out, total, err
}

func (s *placeService) Get(dbc dbctx.Context, userID uint, id uint) (*PlaceView, error) {
	p, err := s.readable(dbc, userID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(dbc, []*types.Place{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *placeService) Update(dbc dbctx.Context, userID uint, id uint, in PlaceUpdate) (*PlaceView, error) {
	if _, err := s.owned(dbc, userID, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		updates["category"] = in.Category.OrOther()
	}
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		updates["longitude"] = *in.Longitude
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Memo != nil {
		updates["memo"] = *in.Memo
	}
	if in.Tags != nil {
		updates["tags"] = *in.Tags
	}
	if in.VisitedAt != nil {
		updates["visited_at"] = *in.VisitedAt
	}
	if in.Visibility != nil {
		updates["visibility"] = *in.Visibility
	}
	if err := s.places.UpdateFields(dbc, id, updates); err != nil {
		return nil, fmt.Errorf("update place: %w", err)
	}
	return s.Get(dbc, userID, id)
}

func (s *placeService) Delete(dbc dbctx.Context, userID uint, id uint) error {
	if _, err := s.owned(dbc, userID, id); err != nil {
		return err
	}
	if err := s.places.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	s.log.Info("Place deleted", "place_id", id, "user_id", userID)
	return nil
}

// readable loads a place the caller may see: 404 when missing, 403 when private and foreign.
func (s *placeService) readable(dbc dbctx.Context, userID uint, id uint) (*types.Place, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	p, err := s.places.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlaceNotFound
	}
	if !p.VisibleTo(userID) {
		return nil, ErrPlaceForbidden
	}
	return p, nil
}

func (s *placeService) owned(dbc dbctx.Context, userID uint, id uint) (*types.Place, error) {
	p, err := s.readable(dbc, userID, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPlaceForbidden
	}
	return p, nil
}

// enrich attaches avg_rating/review_count with a single grouped query.
func (s *placeService) enrich(dbc dbctx.Context, rows []*types.Place) ([]*PlaceView, error) {
	out := make([]*PlaceView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	stats, err := s.reviews.StatsByPlaceIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("place stats: %w", err)
	}
	for _, p := range rows {
		st := stats[p.ID]
		out = append(out, &PlaceView{
			Place:       *p,
			AvgRating:   recommend.AvgRatingPtr(st),
			ReviewCount: st.Count,
		})
	}
	return out, nil
}
