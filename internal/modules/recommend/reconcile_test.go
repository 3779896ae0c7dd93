package recommend

import (
	"context"
	"errors"
	"testing"

	types "github.com/Jacod97/taste-map/internal/domain"
)

type fakePlaces map[uint]*types.Place

func (f fakePlaces) GetAccessible(_ context.Context, id uint, userID uint) (*types.Place, error) {
	p, ok := f[id]
	if !ok || !p.VisibleTo(userID) {
		return nil, nil
	}
	return p, nil
}

type fakeStats map[uint]types.ReviewStats

func (f fakeStats) Stats(_ context.Context, placeID uint) (types.ReviewStats, error) {
	return f[placeID], nil
}

type failingPlaces struct{}

func (failingPlaces) GetAccessible(context.Context, uint, uint) (*types.Place, error) {
	return nil, errors.New("db down")
}

func TestReconcileDropsUnknownAndKeepsOrder(t *testing.T) {
	places := fakePlaces{
		5: {ID: 5, UserID: 1, Name: "five", Category: "korean", Visibility: types.VisibilityPrivate},
		7: {ID: 7, UserID: 2, Name: "seven", Visibility: types.VisibilityPublic},
		8: {ID: 8, UserID: 2, Name: "eight", Visibility: types.VisibilityPrivate},
	}
	stats := fakeStats{5: {PlaceID: 5, Avg: 4.26, Count: 3}}
	rec := Reconciler{Places: places, Stats: stats}

	reply := ParseReply("```json {\"message\":\"try X\",\"is_asking\":false,\"place_ids\":[5,999],\"reasons\":{\"5\":\"close by\"}} ```")
	got, err := rec.Reconcile(context.Background(), 1, reply)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len=%d want 1: %+v", len(got), got)
	}
	if got[0].ID != 5 || got[0].Reason != "close by" || got[0].Category != "korean" {
		t.Fatalf("entry=%+v", got[0])
	}
	if got[0].AvgRating == nil || *got[0].AvgRating != 4.3 {
		t.Fatalf("avg=%v want 4.3", got[0].AvgRating)
	}

	got, err = rec.Reconcile(context.Background(), 1, Reply{PlaceIDs: []uint{7, 8, 5, 7, 0}})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	ids := make([]uint, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	if len(ids) != 2 || ids[0] != 7 || ids[1] != 5 {
		t.Fatalf("ids=%v want [7 5]", ids)
	}
	if got[0].AvgRating != nil || got[0].Reason != "" || got[0].Category != "other" {
		t.Fatalf("public place without reviews=%+v", got[0])
	}
}

func TestReconcileEmpty(t *testing.T) {
	got, err := Reconciler{}.Reconcile(context.Background(), 1, FallbackReply())
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}

func TestReconcileStorageError(t *testing.T) {
	rec := Reconciler{Places: failingPlaces{}, Stats: fakeStats{}}
	if _, err := rec.Reconcile(context.Background(), 1, Reply{PlaceIDs: []uint{1}}); err == nil {
		t.Fatalf("expected storage error")
	}
}

type countingPlaces struct {
	fakePlaces
	calls map[uint]int
}

func (c countingPlaces) GetAccessible(ctx context.Context, id uint, userID uint) (*types.Place, error) {
	c.calls[id]++
	return c.fakePlaces.GetAccessible(ctx, id, userID)
}

func TestReconcileRepeatedIDsEmittedOnce(t *testing.T) {
	places := countingPlaces{
		fakePlaces: fakePlaces{
			5: {ID: 5, UserID: 1, Name: "five"},
			6: {ID: 6, UserID: 1, Name: "six"},
		},
		calls: map[uint]int{},
	}
	rec := Reconciler{Places: places, Stats: fakeStats{}}

	got, err := rec.Reconcile(context.Background(), 1, Reply{
		PlaceIDs: []uint{5, 5, 6, 5},
		Reasons:  map[string]string{"5": "first reason"},
	})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got) != 2 || got[0].ID != 5 || got[1].ID != 6 {
		t.Fatalf("got=%+v want ids [5 6]", got)
	}
	if got[0].Reason != "first reason" {
		t.Fatalf("reason=%q", got[0].Reason)
	}
	if places.calls[5] != 1 {
		t.Fatalf("place 5 looked up %d times, want 1", places.calls[5])
	}
}
