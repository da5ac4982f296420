// Package identity resolves a presented bearer credential, either a legacy
// session token or an identity-provider JWT, into one Identity.
package identity

import (
	"context"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/pkg/jwt"
)

// Source names the mechanism that produced an Identity
type Source string

const (
	SourceSession  Source = "session"
	SourceProvider Source = "provider"
)

// Identity is the authenticated caller
type Identity struct {
	UserID         uint64    `json:"user_id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Source         Source    `json:"source"`
	ProviderUserID string    `json:"provider_user_id,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// User returns the minimal local user used by authorization predicates
func (i *Identity) User() *domain.User {
	if i == nil {
		return nil
	}
	return &domain.User{ID: i.UserID, Email: i.Email, Name: i.Name}
}

// Authenticator turns a bearer token into an Identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// Resolver picks the authenticator matching the token's shape
type Resolver struct {
	session  Authenticator
	provider Authenticator
}

// NewResolver creates a Resolver; provider may be nil when no identity provider is configured
func NewResolver(session, provider Authenticator) *Resolver {
	return &Resolver{session: session, provider: provider}
}

// Authenticate dispatches JWT-shaped tokens to the provider and everything else to sessions
func (r *Resolver) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, common.ErrUnauthorized
	}
	if jwt.LooksLikeJWT(token) {
		if r.provider == nil {
			return nil, common.ErrInvalidToken
		}
		return r.provider.Authenticate(ctx, token)
	}
	return r.session.Authenticate(ctx, token)
}
