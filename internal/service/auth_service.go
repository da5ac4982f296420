package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup and legacy session login/logout
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = domain.DefaultSessionTTL
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Signup registers a password account
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Name:              strings.TrimSpace(req.Name),
		Email:             req.Email,
		PasswordHash:      string(hash),
		Theme:             domain.ThemeSystem,
		Font:              "default",
		KeyboardShortcuts: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the password and opens a new session
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest, userAgent, ip string) (*domain.SessionResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.HasPassword() || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := uniqueToken(ctx, NewSessionToken, s.sessions.TokenExists, s.now)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}
	session := &domain.Session{
		UserID:    user.ID,
		Token:     token,
		UserAgent: userAgent,
		IPAddress: ip,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &domain.SessionResponse{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Logout deletes exactly the presented session
func (s *AuthService) Logout(ctx context.Context, token string) error {
	deleted, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrInvalidToken
	}
	return nil
}

// PurgeExpiredSessions removes sessions that expired at or before now
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}
