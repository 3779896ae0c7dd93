package place

import (
	"context"
	"testing"

	"github.com/Jacod97/taste-map/internal/data/repos/testutil"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
)

func TestPlaceRepoAccess(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewPlaceRepo(db, testutil.Logger(t))

	mine := testutil.SeedPlace(t, ctx, db, 1, "mine", types.VisibilityPrivate)
	theirsPublic := testutil.SeedPlace(t, ctx, db, 2, "public", types.VisibilityPublic)
	theirsPrivate := testutil.SeedPlace(t, ctx, db, 2, "hidden", types.VisibilityPrivate)

	cases := []struct {
		name string
		id   uint
		want bool
	}{
		{"own private", mine.ID, true},
		{"other public", theirsPublic.ID, true},
		{"other private", theirsPrivate.ID, false},
		{"missing", 9999, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.GetAccessible(dbc, tc.id, 1)
			if err != nil {
				t.Fatalf("GetAccessible: %v", err)
			}
			if (got != nil) != tc.want {
				t.Fatalf("GetAccessible(%d) found=%v want %v", tc.id, got != nil, tc.want)
			}
		})
	}
}

func TestPlaceRepoListAndBounds(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewPlaceRepo(db, testutil.Logger(t))

	for i := 0; i < 3; i++ {
		testutil.SeedPlace(t, ctx, db, 1, "p", types.VisibilityPrivate)
	}
	testutil.SeedPlace(t, ctx, db, 2, "other", types.VisibilityPublic)

	rows, total, err := repo.ListByUser(dbc, 1, 1, 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 3 || len(rows) != 1 {
		t.Fatalf("ListByUser total=%d len=%d want 3/1", total, len(rows))
	}

	all, err := repo.ListAllByUser(dbc, 1)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAllByUser err=%v len=%d", err, len(all))
	}

	b := Bounds{MinLat: 37, MaxLat: 38, MinLng: 126, MaxLng: 127}
	own, err := repo.InBounds(dbc, 1, b, false)
	if err != nil || len(own) != 3 {
		t.Fatalf("InBounds own err=%v len=%d", err, len(own))
	}
	withPublic, err := repo.InBounds(dbc, 1, b, true)
	if err != nil || len(withPublic) != 4 {
		t.Fatalf("InBounds public err=%v len=%d", err, len(withPublic))
	}
	far, err := repo.InBounds(dbc, 1, Bounds{MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 1}, true)
	if err != nil || len(far) != 0 {
		t.Fatalf("InBounds far err=%v len=%d", err, len(far))
	}
}

func TestPlaceRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewPlaceRepo(db, testutil.Logger(t))

	ramen := testutil.SeedPlace(t, ctx, db, 1, "Ramen House", types.VisibilityPrivate)
	testutil.SeedPlace(t, ctx, db, 1, "Bakery", types.VisibilityPrivate)
	other := testutil.SeedPlace(t, ctx, db, 2, "ramen corner", types.VisibilityPublic)
	testutil.SeedReview(t, ctx, db, 1, ramen.ID, 4.5, "")
	testutil.SeedReview(t, ctx, db, 2, other.ID, 2.0, "")

	rows, total, err := repo.Search(dbc, 1, SearchFilter{Keyword: "RAMEN", OnlyMine: false})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("keyword total=%d len=%d want 2", total, len(rows))
	}

	rows, total, err = repo.Search(dbc, 1, SearchFilter{Keyword: "ramen", OnlyMine: true})
	if err != nil || total != 1 || rows[0].ID != ramen.ID {
		t.Fatalf("only_mine err=%v total=%d", err, total)
	}

	minRating := 4.0
	rows, total, err = repo.Search(dbc, 1, SearchFilter{MinRating: &minRating})
	if err != nil || total != 1 || rows[0].ID != ramen.ID {
		t.Fatalf("min_rating err=%v total=%d", err, total)
	}

	rows, _, err = repo.Search(dbc, 1, SearchFilter{OnlyMine: true, SortBy: "name"})
	if err != nil || len(rows) != 2 || rows[0].Name != "Bakery" {
		t.Fatalf("sort by name err=%v rows=%v", err, rows)
	}
}

func TestPlaceRepoDeleteRemovesReviews(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewPlaceRepo(db, testutil.Logger(t))

	p := testutil.SeedPlace(t, ctx, db, 1, "gone", types.VisibilityPublic)
	testutil.SeedReview(t, ctx, db, 1, p.ID, 3, "ok")

	if err := repo.Delete(dbc, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := repo.GetByID(dbc, p.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: %v %v", got, err)
	}
	var n int64
	if err := db.Model(&types.Review{}).Where("place_id = ?", p.ID).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("reviews left=%d err=%v", n, err)
	}
}
