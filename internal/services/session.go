package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Jacod97/taste-map/internal/data/repos"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/platform/logger"
)

const (
	sessionTokenBytes    = 48
	sessionCreateRetries = 3
)

// SessionStore keeps recommendation conversations addressed by an opaque token.
type SessionStore interface {
	Create(dbc dbctx.Context, userID uint) (*types.RecommendationSession, error)
	// Lookup requires both the token and the owner to match; otherwise ErrSessionNotFound.
	Lookup(dbc dbctx.Context, token string, userID uint) (*types.RecommendationSession, error)
	// AppendTurn persists the user then assistant message atomically and refreshes s.
	AppendTurn(dbc dbctx.Context, s *types.RecommendationSession, userText, assistantText string) error
}

type sessionStore struct {
	log      *logger.Logger
	sessions repos.SessionRepo
	newToken func() (string, error)
}

func NewSessionStore(baseLog *logger.Logger, sessions repos.SessionRepo) SessionStore {
	return &sessionStore{
		log:      baseLog.With("service", "SessionStore"),
		sessions: sessions,
		newToken: NewSessionToken,
	}
}

// NewSessionToken returns 48 random bytes as unpadded URL-safe base64 (64 chars).
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *sessionStore) Create(dbc dbctx.Context, userID uint) (*types.RecommendationSession, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}
	var lastErr error
	for attempt := 1; attempt <= sessionCreateRetries; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, err
		}
		row := &types.RecommendationSession{
			UserID:      userID,
			AccessToken: token,
			Messages:    []byte("[]"),
			Context:     []byte("{}"),
		}
		created, err := s.sessions.Create(dbc, row)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("Session token collision, regenerating", "attempt", attempt)
	}
	return nil, fmt.Errorf("create session after %d attempts: %w", sessionCreateRetries, lastErr)
}

func (s *sessionStore) Lookup(dbc dbctx.Context, token string, userID uint) (*types.RecommendationSession, error) {
	if token == "" || userID == 0 {
		return nil, ErrSessionNotFound
	}
	row, err := s.sessions.GetByTokenForUser(dbc, token, userID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrSessionNotFound
	}
	return row, nil
}

func (s *sessionStore) AppendTurn(dbc dbctx.Context, sess *types.RecommendationSession, userText, assistantText string) error {
	if sess == nil || sess.ID == 0 {
		return ErrSessionNotFound
	}
	updated, err := s.sessions.AppendTurns(dbc, sess.ID,
		types.Turn{Role: types.RoleUser, Content: userText},
		types.Turn{Role: types.RoleAssistant, Content: assistantText},
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	sess.Messages = updated.Messages
	sess.UpdatedAt = updated.UpdatedAt
	return nil
}
