package recommend

import (
	"context"
	"fmt"

	types "github.com/Jacod97/taste-map/internal/domain"
)

// PlaceLookup resolves a place the user may see (own or public). (nil, nil) means not visible.
type PlaceLookup interface {
	GetAccessible(ctx context.Context, id uint, userID uint) (*types.Place, error)
}

type StatsLookup interface {
	Stats(ctx context.Context, placeID uint) (types.ReviewStats, error)
}

type RecommendedPlace struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Address   *string  `json:"address"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AvgRating *float64 `json:"avg_rating"`
	Reason    string   `json:"reason"`
}

type Reconciler struct {
	Places PlaceLookup
	Stats  StatsLookup
}

// Reconcile keeps the model's order, drops ids the user cannot see and emits each id once.
// Storage errors are returned; unknown ids are not errors.
func (r Reconciler) Reconcile(ctx context.Context, userID uint, reply Reply) ([]RecommendedPlace, error) {
	out := make([]RecommendedPlace, 0, len(reply.PlaceIDs))
	if len(reply.PlaceIDs) == 0 {
		return out, nil
	}
	seen := make(map[uint]struct{}, len(reply.PlaceIDs))
	for _, id := range reply.PlaceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, err := r.Places.GetAccessible(ctx, id, userID)
		if err != nil {
			return nil, fmt.Errorf("lookup place %d: %w", id, err)
		}
		if p == nil {
			continue
		}
		st, err := r.Stats.Stats(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("place %d stats: %w", id, err)
		}
		out = append(out, RecommendedPlace{
			ID:        p.ID,
			Name:      p.Name,
			Category:  string(p.Category.OrOther()),
			Address:   p.Address,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			AvgRating: AvgRatingPtr(st),
			Reason:    reply.Reason(id),
		})
	}
	return out, nil
}

// AvgRatingPtr is the rounded average, or nil when there are no reviews.
func AvgRatingPtr(st types.ReviewStats) *float64 {
	if st.Count == 0 || st.Avg == 0 {
		return nil
	}
	v := Round1(st.Avg)
	return &v
}
