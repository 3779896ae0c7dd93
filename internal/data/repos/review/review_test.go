package review

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos/testutil"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
)

func TestReviewRepoStats(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewReviewRepo(db, testutil.Logger(t))

	a := testutil.SeedPlace(t, ctx, db, 1, "a", types.VisibilityPublic)
	b := testutil.SeedPlace(t, ctx, db, 1, "b", types.VisibilityPublic)
	testutil.SeedReview(t, ctx, db, 1, a.ID, 4, "good")
	testutil.SeedReview(t, ctx, db, 2, a.ID, 5, "great")

	st, err := repo.Stats(dbc, a.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Count != 2 || st.Avg != 4.5 {
		t.Fatalf("Stats=%+v want avg 4.5 count 2", st)
	}

	empty, err := repo.Stats(dbc, b.ID)
	if err != nil {
		t.Fatalf("Stats empty: %v", err)
	}
	if empty.Count != 0 || empty.Avg != 0 || empty.PlaceID != b.ID {
		t.Fatalf("Stats empty=%+v", empty)
	}

	m, err := repo.StatsByPlaceIDs(dbc, []uint{a.ID, b.ID})
	if err != nil {
		t.Fatalf("StatsByPlaceIDs: %v", err)
	}
	if _, ok := m[b.ID]; ok {
		t.Fatalf("place without reviews should be absent")
	}
	if m[a.ID].Count != 2 {
		t.Fatalf("StatsByPlaceIDs[a]=%+v", m[a.ID])
	}
}

func TestReviewRepoListAndExists(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewReviewRepo(db, testutil.Logger(t))

	a := testutil.SeedPlace(t, ctx, db, 1, "a", types.VisibilityPublic)
	b := testutil.SeedPlace(t, ctx, db, 1, "b", types.VisibilityPublic)
	testutil.SeedReview(t, ctx, db, 1, a.ID, 4, "first")
	testutil.SeedReview(t, ctx, db, 2, a.ID, 3, "second")
	testutil.SeedReview(t, ctx, db, 1, b.ID, 2, "")

	byPlace, err := repo.ListByPlace(dbc, a.ID, 0, 0)
	if err != nil || len(byPlace) != 2 {
		t.Fatalf("ListByPlace err=%v len=%d", err, len(byPlace))
	}
	all, err := repo.ListByPlaceIDs(dbc, []uint{a.ID, b.ID})
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByPlaceIDs err=%v len=%d", err, len(all))
	}
	mine, err := repo.ListByUser(dbc, 1, 0, 10)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByUser err=%v len=%d", err, len(mine))
	}

	ok, err := repo.ExistsForUser(dbc, 2, a.ID)
	if err != nil || !ok {
		t.Fatalf("ExistsForUser(2,a)=%v err=%v", ok, err)
	}
	ok, err = repo.ExistsForUser(dbc, 2, b.ID)
	if err != nil || ok {
		t.Fatalf("ExistsForUser(2,b)=%v err=%v", ok, err)
	}
}

func TestReviewRepoDuplicateRejected(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewReviewRepo(db, testutil.Logger(t))

	p := testutil.SeedPlace(t, ctx, db, 1, "a", types.VisibilityPublic)
	if _, err := repo.Create(dbc, &types.Review{UserID: 1, PlaceID: p.ID, Rating: 3}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(dbc, &types.Review{UserID: 1, PlaceID: p.ID, Rating: 4})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate Create err=%v want ErrDuplicatedKey", err)
	}
}

func TestReviewRepoUpdateAndDelete(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewReviewRepo(db, testutil.Logger(t))

	p := testutil.SeedPlace(t, ctx, db, 1, "a", types.VisibilityPublic)
	rv := testutil.SeedReview(t, ctx, db, 1, p.ID, 3, "meh")

	if err := repo.UpdateFields(dbc, rv.ID, map[string]interface{}{"rating": 5.0}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, rv.ID)
	if err != nil || got == nil || got.Rating != 5 {
		t.Fatalf("GetByID after update: %+v err=%v", got, err)
	}
	if err := repo.Delete(dbc, rv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := repo.GetByID(dbc, rv.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: %+v err=%v", got, err)
	}
}
