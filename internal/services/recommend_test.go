package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	"github.com/Jacod97/taste-map/internal/data/repos/testutil"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/modules/recommend"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/llm"
)

type recommendFixture struct {
	db        *gorm.DB
	svc       RecommendService
	sessions  SessionStore
	feedbacks repos.FeedbackRepo
	prompts   []string
}

func newRecommendFixture(t *testing.T, reply func(ctx context.Context, prompt string) (string, error)) *recommendFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &recommendFixture{db: db}
	f.sessions = NewSessionStore(log, repos.NewSessionRepo(db, log))
	f.feedbacks = repos.NewFeedbackRepo(db, log)
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		f.prompts = append(f.prompts, prompt)
		return reply(ctx, prompt)
	})
	f.svc = NewRecommendService(db, log, RecommendConfig{},
		f.sessions,
		repos.NewPlaceRepo(db, log),
		repos.NewReviewRepo(db, log),
		f.feedbacks,
		gen,
		nil,
	)
	return f
}

func TestRecommendReconcilesModelIDs(t *testing.T) {
	var own, foreign *types.Place
	f := newRecommendFixture(t, func(context.Context, string) (string, error) {
		return fmt.Sprintf("```json\n{\"message\": \"여기 어때요\", \"is_asking\": false, \"place_ids\": [%d, %d, 999], \"reasons\": {\"%d\": \"가까워요\"}}\n```",
			own.ID, foreign.ID, own.ID), nil
	})
	ctx := context.Background()
	own = testutil.SeedPlace(t, ctx, f.db, 1, "국밥집", types.VisibilityPrivate)
	foreign = testutil.SeedPlace(t, ctx, f.db, 2, "비밀 맛집", types.VisibilityPrivate)
	testutil.SeedReview(t, ctx, f.db, 1, own.ID, 4.5, "국물이 진해요")

	resp, err := f.svc.Recommend(dbctx.Of(ctx), 1, RecommendRequest{Message: "점심 추천"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.SessionToken == "" || resp.Message != "여기 어때요" || resp.IsAsking {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.RecommendedPlaces) != 1 {
		t.Fatalf("places=%+v want only own place", resp.RecommendedPlaces)
	}
	got := resp.RecommendedPlaces[0]
	if got.ID != own.ID || got.Reason != "가까워요" || got.AvgRating == nil || *got.AvgRating != 4.5 {
		t.Fatalf("unexpected place: %+v", got)
	}

	prompt := f.prompts[0]
	if !strings.Contains(prompt, fmt.Sprintf("[맛집 ID: %d]", own.ID)) || !strings.Contains(prompt, "국물이 진해요") {
		t.Fatalf("prompt lacks own place context:\n%s", prompt)
	}
	if strings.Contains(prompt, "비밀 맛집") {
		t.Fatalf("prompt leaked another user's place")
	}
}

func TestRecommendContinuesSession(t *testing.T) {
	f := newRecommendFixture(t, func(context.Context, string) (string, error) {
		return `{"message": "어떤 음식이 좋으세요?", "is_asking": true, "place_ids": [], "reasons": {}}`, nil
	})
	dbc := dbctx.Of(context.Background())

	first, err := f.svc.Recommend(dbc, 1, RecommendRequest{Message: "배고파"})
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	if !first.IsAsking || len(first.RecommendedPlaces) != 0 {
		t.Fatalf("unexpected first response: %+v", first)
	}
	if !strings.Contains(f.prompts[0], recommend.NoPlacesSentinel) {
		t.Fatalf("empty user should see the no-places sentinel")
	}

	second, err := f.svc.Recommend(dbc, 1, RecommendRequest{Message: "한식", SessionToken: first.SessionToken})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if second.SessionToken != first.SessionToken {
		t.Fatalf("session not continued")
	}
	if !strings.Contains(f.prompts[1], "사용자: 배고파\nAI: 어떤 음식이 좋으세요?\n") {
		t.Fatalf("history missing from prompt:\n%s", f.prompts[1])
	}

	view, err := f.svc.GetSession(dbc, 1, first.SessionToken)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(view.Messages) != 4 {
		t.Fatalf("messages=%d want 4", len(view.Messages))
	}

	// A token owned by someone else starts a fresh session instead of leaking history.
	other, err := f.svc.Recommend(dbc, 2, RecommendRequest{Message: "안녕", SessionToken: first.SessionToken})
	if err != nil {
		t.Fatalf("foreign Recommend: %v", err)
	}
	if other.SessionToken == first.SessionToken {
		t.Fatalf("foreign token was reused")
	}
	if _, err := f.svc.GetSession(dbc, 2, first.SessionToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("GetSession foreign err=%v", err)
	}
}

func TestRecommendFallbackIsStored(t *testing.T) {
	f := newRecommendFixture(t, func(context.Context, string) (string, error) {
		return "sorry, I can't do JSON today", nil
	})
	dbc := dbctx.Of(context.Background())

	resp, err := f.svc.Recommend(dbc, 1, RecommendRequest{Message: "추천"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Message != recommend.FallbackMessage || resp.IsAsking || len(resp.RecommendedPlaces) != 0 {
		t.Fatalf("unexpected fallback response: %+v", resp)
	}
	view, err := f.svc.GetSession(dbc, 1, resp.SessionToken)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(view.Messages) != 2 || view.Messages[1].Content != recommend.FallbackMessage {
		t.Fatalf("fallback turn not stored: %+v", view.Messages)
	}
}

func TestRecommendModelFailure(t *testing.T) {
	f := newRecommendFixture(t, func(context.Context, string) (string, error) {
		return "", llm.ErrCircuitOpen
	})
	dbc := dbctx.Of(context.Background())

	s, err := f.sessions.Create(dbc, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = f.svc.Recommend(dbc, 1, RecommendRequest{Message: "추천", SessionToken: s.AccessToken})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("err=%v want ErrModelUnavailable", err)
	}
	view, err := f.svc.GetSession(dbc, 1, s.AccessToken)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(view.Messages) != 0 {
		t.Fatalf("failed turn was stored: %+v", view.Messages)
	}
}

func TestRecommendIgnoresClientCancellation(t *testing.T) {
	f := newRecommendFixture(t, func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, ok := ctx.Deadline(); !ok {
			return "", errors.New("model call has no deadline")
		}
		return `{"message": "ok", "is_asking": false, "place_ids": [], "reasons": {}}`, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := f.svc.Recommend(dbctx.Of(ctx), 1, RecommendRequest{Message: "추천"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Message != "ok" {
		t.Fatalf("message=%q", resp.Message)
	}
}

func TestSubmitFeedback(t *testing.T) {
	f := newRecommendFixture(t, nil)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)

	s, err := f.sessions.Create(dbc, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	mine := testutil.SeedPlace(t, ctx, f.db, 1, "mine", types.VisibilityPrivate)
	public := testutil.SeedPlace(t, ctx, f.db, 2, "public", types.VisibilityPublic)
	hidden := testutil.SeedPlace(t, ctx, f.db, 2, "hidden", types.VisibilityPrivate)

	cases := []struct {
		name    string
		userID  uint
		req     FeedbackRequest
		wantErr error
	}{
		{"own place", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: mine.ID, IsHelpful: 1}, nil},
		{"same place again", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: mine.ID, IsHelpful: -1}, nil},
		{"public place", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: public.ID, IsHelpful: 1}, nil},
		{"private foreign place", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: hidden.ID, IsHelpful: 1}, ErrPlaceForbidden},
		{"missing place", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: 999, IsHelpful: 1}, ErrPlaceNotFound},
		{"foreign session", 2, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: public.ID, IsHelpful: 1}, ErrSessionNotFound},
		{"invalid value", 1, FeedbackRequest{SessionToken: s.AccessToken, PlaceID: mine.ID, IsHelpful: 0}, ErrInvalidFeedback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.SubmitFeedback(dbc, tc.userID, tc.req)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("SubmitFeedback: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v want %v", err, tc.wantErr)
			}
		})
	}

	rows, err := f.feedbacks.ListBySession(dbc, s.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("feedback rows=%d want 3", len(rows))
	}
	if rows[0].IsHelpful != 1 || rows[1].IsHelpful != -1 {
		t.Fatalf("feedback is not append-only: %+v %+v", rows[0], rows[1])
	}
}
