package service

import (
	"context"
	"testing"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, repository.SessionRepository) {
	db := testutil.NewDB(t)
	sessions := repository.NewSessionRepository(db)
	return NewAuthService(repository.NewUserRepository(db), sessions, time.Hour), sessions
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newAuthService(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	user, err := svc.Signup(ctx, &domain.SignupRequest{Name: " Kim ", Email: "Kim@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "Kim", user.Name)
	assert.Equal(t, "kim@example.com", user.Email)
	assert.NotEqual(t, "password1", user.PasswordHash)

	_, err = svc.Signup(ctx, &domain.SignupRequest{Name: "dup", Email: "kim@example.com", Password: "password1"})
	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)

	resp, err := svc.Login(ctx, &domain.LoginRequest{Email: "KIM@example.com", Password: "password1"}, "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, fixed.Add(time.Hour), resp.ExpiresAt)
	assert.Equal(t, user.ID, resp.User.ID)

	stored, err := sessions.FindByToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "test-agent", stored.UserAgent)
	assert.Equal(t, "127.0.0.1", stored.IPAddress)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	_, err := svc.Signup(ctx, &domain.SignupRequest{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "a@example.com", Password: "wrong-pass"}, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &domain.LoginRequest{Email: "nobody@example.com", Password: "password1"}, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthService_LoginWithoutPasswordIsRejected(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "provider only", "p@example.com")
	svc := NewAuthService(repository.NewUserRepository(db), repository.NewSessionRepository(db), 0)

	_, err := svc.Login(ctx, &domain.LoginRequest{Email: "p@example.com", Password: "anything1"}, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestAuthService_LogoutDeletesOnlyPresentedSession(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newAuthService(t)
	_, err := svc.Signup(ctx, &domain.SignupRequest{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	first, err := svc.Login(ctx, &domain.LoginRequest{Email: "a@example.com", Password: "password1"}, "", "")
	require.NoError(t, err)
	second, err := svc.Login(ctx, &domain.LoginRequest{Email: "a@example.com", Password: "password1"}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.Token))
	assert.ErrorIs(t, svc.Logout(ctx, first.Token), common.ErrInvalidToken)

	_, err = sessions.FindByToken(ctx, second.Token)
	assert.NoError(t, err)
}

func TestAuthService_PurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	svc, sessions := newAuthService(t)
	_, err := svc.Signup(ctx, &domain.SignupRequest{Name: "a", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, &domain.LoginRequest{Email: "a@example.com", Password: "password1"}, "", "")
	require.NoError(t, err)

	svc.now = func() time.Time { return resp.ExpiresAt }
	n, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = sessions.FindByToken(ctx, resp.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
