package service

import (
	"context"
	"time"

	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/repository"
	"github.com/damoang/angple-memo/pkg/jwt"
)

// ProviderVerifier verifies a provider token without touching local state
type ProviderVerifier interface {
	Verify(ctx context.Context, token string) (*domain.ProviderUser, *jwt.ProviderClaims, error)
}

// ProvisioningService performs the explicit first-login step for provider accounts
type ProvisioningService struct {
	verifier ProviderVerifier
	profiles repository.ProfileRepository
	now      func() time.Time
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(verifier ProviderVerifier, profiles repository.ProfileRepository) *ProvisioningService {
	return &ProvisioningService{
		verifier: verifier,
		profiles: profiles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ProvisionResult is returned after a provider sign-in
type ProvisionResult struct {
	Profile   *domain.Profile `json:"profile"`
	User      *domain.User    `json:"user"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// SignIn verifies token and links the provider account to a local user
func (s *ProvisioningService) SignIn(ctx context.Context, token string) (*ProvisionResult, error) {
	pu, claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	profile, user, err := s.profiles.Provision(ctx, pu, s.now())
	if err != nil {
		return nil, err
	}
	return &ProvisionResult{Profile: profile, User: user, ExpiresAt: claims.ExpiresAt()}, nil
}
