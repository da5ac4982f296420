package identity

import (
	"context"
	"errors"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/repository"
)

// SessionAuthenticator validates legacy opaque session tokens
type SessionAuthenticator struct {
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewSessionAuthenticator creates a SessionAuthenticator
func NewSessionAuthenticator(sessions repository.SessionRepository) *SessionAuthenticator {
	return &SessionAuthenticator{sessions: sessions, now: func() time.Time { return time.Now().UTC() }}
}

// Authenticate looks the token up exactly; sessions expiring at or before now are rejected
func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	session, err := a.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			observe(SourceSession, resultInvalid)
		}
		return nil, err
	}
	if session.Expired(a.now()) {
		observe(SourceSession, resultExpired)
		return nil, common.ErrExpiredToken
	}

	observe(SourceSession, resultOK)
	return &Identity{
		UserID:    session.User.ID,
		Email:     session.User.Email,
		Name:      session.User.Name,
		Source:    SourceSession,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
