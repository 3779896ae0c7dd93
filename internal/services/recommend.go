package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/modules/recommend"
	"github.com/Jacod97/taste-map/internal/observability"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/llm"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const DefaultRecommendTimeout = 60 * time.Second

type RecommendConfig struct {
	Timeout         time.Duration
	HistoryTurns    int
	ContextMaxChars int
}

type RecommendRequest struct {
	Message      string
	SessionToken string
	Latitude     *float64
	Longitude    *float64
}

type RecommendResponse struct {
	SessionToken      string                       `json:"session_token"`
	Message           string                       `json:"message"`
	IsAsking          bool                         `json:"is_asking"`
	RecommendedPlaces []recommend.RecommendedPlace `json:"recommended_places"`
}

type FeedbackRequest struct {
	SessionToken string
	PlaceID      uint
	IsHelpful    int
}

type SessionView struct {
	SessionToken string       `json:"session_token"`
	Messages     []types.Turn `json:"messages"`
	CreatedAt    time.Time    `json:"created_at"`
}

type RecommendService interface {
	Recommend(dbc dbctx.Context, userID uint, req RecommendRequest) (*RecommendResponse, error)
	SubmitFeedback(dbc dbctx.Context, userID uint, req FeedbackRequest) error
	GetSession(dbc dbctx.Context, userID uint, token string) (*SessionView, error)
}

type recommendService struct {
	db        *gorm.DB
	log       *logger.Logger
	cfg       RecommendConfig
	sessions  SessionStore
	places    repos.PlaceRepo
	reviews   repos.ReviewRepo
	feedbacks repos.FeedbackRepo
	gen       llm.Generator
	metrics   *observability.Metrics
}

func NewRecommendService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg RecommendConfig,
	sessions SessionStore,
	places repos.PlaceRepo,
	reviews repos.ReviewRepo,
	feedbacks repos.FeedbackRepo,
	gen llm.Generator,
	metrics *observability.Metrics,
) RecommendService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRecommendTimeout
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = recommend.DefaultHistoryTurns
	}
	return &recommendService{
		db:        db,
		log:       baseLog.With("service", "RecommendService"),
		cfg:       cfg,
		sessions:  sessions,
		places:    places,
		reviews:   reviews,
		feedbacks: feedbacks,
		gen:       gen,
		metrics:   metrics,
	}
}

// Recommend runs one conversational turn. Once started it is not cancelled by the client;
// only the model call is bounded, by cfg.Timeout.
func (s *recommendService) Recommend(dbc dbctx.Context, userID uint, req RecommendRequest) (*RecommendResponse, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	ctx := context.WithoutCancel(ctxutil.Default(dbc.Ctx))
	flow := dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	session, err := s.sessions.Lookup(flow, req.SessionToken, userID)
	if errors.Is(err, ErrSessionNotFound) {
		session, err = s.sessions.Create(flow, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	turns, err := session.Turns()
	if err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}

	digests, err := s.digests(flow, userID)
	if err != nil {
		return nil, err
	}
	prompt := recommend.BuildPrompt(recommend.PromptInput{
		PlacesContext: recommend.BuildPlacesContext(digests, recommend.ContextOptions{MaxChars: s.cfg.ContextMaxChars}),
		HistoryText:   recommend.BuildHistoryText(turns, s.cfg.HistoryTurns),
		UserMessage:   req.Message,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
	})

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	raw, err := s.gen.Generate(genCtx, prompt)
	cancel()
	if err != nil {
		s.log.Error("Model call failed", "session_id", session.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	reply := recommend.ParseReply(raw)
	if reply.Kind == recommend.ReplyFallback {
		s.log.Warn("Model reply unreadable, using fallback", "session_id", session.ID, "raw_len", len(raw))
	}

	rec := recommend.Reconciler{
		Places: placeLookup{repo: s.places, tx: dbc.Tx},
		Stats:  statsLookup{repo: s.reviews, tx: dbc.Tx},
	}
	places, err := rec.Reconcile(ctx, userID, reply)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.AppendTurn(flow, session, req.Message, reply.Message); err != nil {
		return nil, err
	}
	s.metrics.ObserveRecommendation(reply.Kind.String(), len(places))

	return &RecommendResponse{
		SessionToken:      session.AccessToken,
		Message:           reply.Message,
		IsAsking:          reply.IsAsking,
		RecommendedPlaces: places,
	}, nil
}

// digests loads the user's places (oldest first) with their review texts and aggregates.
func (s *recommendService) digests(dbc dbctx.Context, userID uint) ([]recommend.PlaceDigest, error) {
	places, err := s.places.ListAllByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	reviews, err := s.reviews.ListByPlaceIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	stats, err := s.reviews.StatsByPlaceIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	texts := make(map[uint][]string, len(places))
	for _, rv := range reviews {
		if rv.Content != nil && *rv.Content != "" {
			texts[rv.PlaceID] = append(texts[rv.PlaceID], *rv.Content)
		}
	}
	out := make([]recommend.PlaceDigest, 0, len(places))
	for _, p := range places {
		st := stats[p.ID]
		out = append(out, recommend.PlaceDigest{
			Place:       p,
			AvgRating:   st.Avg,
			ReviewCount: st.Count,
			ReviewTexts: texts[p.ID],
		})
	}
	return out, nil
}

func (s *recommendService) SubmitFeedback(dbc dbctx.Context, userID uint, req FeedbackRequest) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}
	if req.IsHelpful != types.FeedbackHelpful && req.IsHelpful != types.FeedbackNotHelpful {
		return ErrInvalidFeedback
	}
	session, err := s.sessions.Lookup(dbc, req.SessionToken, userID)
	if err != nil {
		return err
	}
	p, err := s.places.GetByID(dbc, req.PlaceID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPlaceNotFound
	}
	if !p.VisibleTo(userID) {
		return ErrPlaceForbidden
	}
	if _, err := s.feedbacks.Create(dbc, &types.RecommendationFeedback{
		UserID:    userID,
		SessionID: session.ID,
		PlaceID:   p.ID,
		IsHelpful: req.IsHelpful,
	}); err != nil {
		return fmt.Errorf("store feedback: %w", err)
	}
	return nil
}

func (s *recommendService) GetSession(dbc dbctx.Context, userID uint, token string) (*SessionView, error) {
	session, err := s.sessions.Lookup(dbc, token, userID)
	if err != nil {
		return nil, err
	}
	turns, err := session.Turns()
	if err != nil {
		return nil, fmt.Errorf("decode session history: %w", err)
	}
	return &SessionView{
		SessionToken: session.AccessToken,
		Messages:     turns,
		CreatedAt:    session.CreatedAt,
	}, nil
}

type placeLookup struct {
	repo repos.PlaceRepo
	tx   *gorm.DB
}

func (l placeLookup) GetAccessible(ctx context.Context, id uint, userID uint) (*types.Place, error) {
	return l.repo.GetAccessible(dbctx.Context{Ctx: ctx, Tx: l.tx}, id, userID)
}

type statsLookup struct {
	repo repos.ReviewRepo
	tx   *gorm.DB
}

func (l statsLookup) Stats(ctx context.Context, placeID uint) (types.ReviewStats, error) {
	return l.repo.Stats(dbctx.Context{Ctx: ctx, Tx: l.tx}, placeID)
}
