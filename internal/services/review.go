package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/modules/recommend"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

type ReviewInput struct {
	PlaceID        uint
	Rating         float64
	Content        *string
	Recommendation *types.ReviewRecommendation
}

type ReviewUpdate struct {
	Rating         *float64
	Content        *string
	Recommendation *types.ReviewRecommendation
}

type ReviewService interface {
	Create(dbc dbctx.Context, userID uint, in ReviewInput) (*types.Review, error)
	ListByPlace(dbc dbctx.Context, userID uint, placeID uint, skip, limit int) ([]*types.Review, error)
	// Stats reports avg_rating 0 when the place has no reviews.
	Stats(dbc dbctx.Context, userID uint, placeID uint) (types.ReviewStats, error)
	ListMine(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Review, error)
	Get(dbc dbctx.Context, userID uint, id uint) (*types.Review, error)
	Update(dbc dbctx.Context, userID uint, id uint, in ReviewUpdate) (*types.Review, error)
	Delete(dbc dbctx.Context, userID uint, id uint) error
}

type reviewService struct {
	db      *gorm.DB
	log     *logger.Logger
	places  repos.PlaceRepo
	reviews repos.ReviewRepo
}

func NewReviewService(db *gorm.DB, baseLog *logger.Logger, places repos.PlaceRepo, reviews repos.ReviewRepo) ReviewService {
	return &reviewService{
		db:      db,
		log:     baseLog.With("service", "ReviewService"),
		places:  places,
		reviews: reviews,
	}
}

func (s *reviewService) Create(dbc dbctx.Context, userID uint, in ReviewInput) (*types.Review, error) {
	if _, err := s.placeFor(dbc, userID, in.PlaceID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.ExistsForUser(dbc, userID, in.PlaceID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}
	rv, err := s.reviews.Create(dbc, &types.Review{
		UserID:         userID,
		PlaceID:        in.PlaceID,
		Rating:         in.Rating,
		Content:        in.Content,
		Recommendation: in.Recommendation,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrAlreadyReviewed
	}
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return rv, nil
}

func (s *reviewService) ListByPlace(dbc dbctx.Context, userID uint, placeID uint, skip, limit int) ([]*types.Review, error) {
	if _, err := s.placeFor(dbc, userID, placeID); err != nil {
		return nil, err
	}
	return s.reviews.ListByPlace(dbc, placeID, skip, limit)
}

func (s *reviewService) Stats(dbc dbctx.Context, userID uint, placeID uint) (types.ReviewStats, error) {
	if _, err := s.placeFor(dbc, userID, placeID); err != nil {
		return types.ReviewStats{}, err
	}
	st, err := s.reviews.Stats(dbc, placeID)
	if err != nil {
		return types.ReviewStats{}, err
	}
	st.PlaceID = placeID
	if st.Count == 0 {
		st.Avg = 0
	} else {
		st.Avg = recommend.Round1(st.Avg)
	}
	return st, nil
}

func (s *reviewService) ListMine(dbc dbctx.Context, userID uint, skip, limit int) ([]*types.Review, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	return s.reviews.ListByUser(dbc, userID, skip, limit)
}

func (s *reviewService) Get(dbc dbctx.Context, userID uint, id uint) (*types.Review, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	rv, err := s.reviews.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	if rv.UserID == userID {
		return rv, nil
	}
	if _, err := s.placeFor(dbc, userID, rv.PlaceID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *reviewService) Update(dbc dbctx.Context, userID uint, id uint, in ReviewUpdate) (*types.Review, error) {
	if _, err := s.owned(dbc, userID, id); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Rating != nil {
		updates["rating"] = *in.Rating
	}
	if in.Content != nil {
		updates["content"] = *in.Content
	}
	if in.Recommendation != nil {
		updates["recommendation"] = *in.Recommendation
	}
	if err := s.reviews.UpdateFields(dbc, id, updates); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return s.reviews.GetByID(dbc, id)
}

func (s *reviewService) Delete(dbc dbctx.Context, userID uint, id uint) error {
	if _, err := s.owned(dbc, userID, id); err != nil {
		return err
	}
	if err := s.reviews.Delete(dbc, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

func (s *reviewService) owned(dbc dbctx.Context, userID uint, id uint) (*types.Review, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	rv, err := s.reviews.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	if rv.UserID != userID {
		return nil, ErrReviewForbidden
	}
	return rv, nil
}

func (s *reviewService) placeFor(dbc dbctx.Context, userID uint, placeID uint) (*types.Place, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	p, err := s.places.GetByID(dbc, placeID)
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
