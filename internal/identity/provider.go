package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/pkg/cache"
	"github.com/damoang/angple-memo/pkg/jwt"
	"github.com/damoang/angple-memo/pkg/logger"
)

// UserFetcher returns the provider's authoritative view of a token's user
type UserFetcher interface {
	FetchUser(ctx context.Context, accessToken string) (*domain.ProviderUser, error)
}

// ProviderAuthenticator validates identity-provider JWTs. It never writes:
// callers whose profile does not exist yet get ErrNotProvisioned.
type ProviderAuthenticator struct {
	verifier *jwt.Verifier
	fetcher  UserFetcher
	profiles repository.ProfileRepository
	users    repository.UserRepository
	cache    cache.Service
	now      func() time.Time
}

// NewProviderAuthenticator creates a ProviderAuthenticator; cacheSvc may be nil
func NewProviderAuthenticator(
	verifier *jwt.Verifier,
	fetcher UserFetcher,
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	cacheSvc cache.Service,
) *ProviderAuthenticator {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &ProviderAuthenticator{
		verifier: verifier,
		fetcher:  fetcher,
		profiles: profiles,
		users:    users,
		cache:    cacheSvc,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Verify checks the token locally and against the provider's user endpoint
func (a *ProviderAuthenticator) Verify(ctx context.Context, token string) (*domain.ProviderUser, *jwt.ProviderClaims, error) {
	claims, err := a.verifier.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			observe(SourceProvider, resultExpired)
			return nil, nil, common.ErrExpiredToken
		}
		observe(SourceProvider, resultInvalid)
		return nil, nil, common.ErrInvalidToken
	}

	pu, err := a.fetcher.FetchUser(ctx, token)
	if err != nil {
		observe(SourceProvider, resultProviderError)
		logger.GetLogger().Warn().Err(err).Str("sub", claims.Subject).Msg("identity provider verification failed")
		return nil, nil, fmt.Errorf("provider verification: %w", common.ErrUnauthorized)
	}
	if pu.ID != claims.Subject {
		observe(SourceProvider, resultInvalid)
		logger.GetLogger().Warn().Str("sub", claims.Subject).Str("provider_id", pu.ID).Msg("token subject does not match provider user")
		return nil, nil, common.ErrInvalidToken
	}
	return pu, claims, nil
}

// Authenticate resolves a provisioned provider user, consulting the cache first
func (a *ProviderAuthenticator) Authenticate(ctx context.Context, token string) (*Identity, error) {
	var cached Identity
	if err := a.cache.GetIdentity(ctx, token, &cached); err == nil {
		if a.now().Before(cached.ExpiresAt) {
			observe(SourceProvider, resultCacheHit)
			return &cached, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.GetLogger().Warn().Err(err).Msg("identity cache read failed")
	}

	pu, claims, err := a.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := a.profiles.FindByProviderUserID(ctx, pu.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotProvisioned) {
			observe(SourceProvider, resultNotProvisioned)
		}
		return nil, err
	}
	user, err := a.users.FindByID(ctx, profile.UserID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			observe(SourceProvider, resultNotProvisioned)
			return nil, common.ErrNotProvisioned
		}
		return nil, err
	}

	ident := &Identity{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Source:         SourceProvider,
		ProviderUserID: pu.ID,
		ExpiresAt:      claims.ExpiresAt(),
	}
	if err := a.cache.SetIdentity(ctx, token, ident, ident.ExpiresAt.Sub(a.now())); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("identity cache write failed")
	}
	observe(SourceProvider, resultOK)
	return ident, nil
}

// Forget drops a cached verification, e.g. on sign-out
func (a *ProviderAuthenticator) Forget(ctx context.Context, token string) {
	if err := a.cache.InvalidateIdentity(ctx, token); err != nil {
		logger.GetLogger().Warn().Err(err).Msg("identity cache invalidate failed")
	}
}
