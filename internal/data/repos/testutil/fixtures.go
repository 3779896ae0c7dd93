package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/Jacod97/taste-map/internal/domain"
	"gorm.io/gorm"
)

func SeedPlace(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, name string, vis types.Visibility) *types.Place {
	tb.Helper()
	p := &types.Place{
		UserID:     userID,
		Name:       name,
		Category:   types.CategoryOther,
		Latitude:   37.5665,
		Longitude:  126.9780,
		Visibility: vis,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed place: %v", err)
	}
	return p
}

func SeedReview(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, placeID uint, rating float64, content string) *types.Review {
	tb.Helper()
	r := &types.Review{
		UserID:  userID,
		PlaceID: placeID,
		Rating:  rating,
	}
	if content != "" {
		r.Content = PtrString(content)
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed review: %v", err)
	}
	return r
}

func PtrString(v string) *string { return &v }

func PtrFloat(v float64) *float64 { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
