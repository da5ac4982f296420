package routes

import (
	"context"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/pkg/jwt"
)

// unavailableVerifier rejects provider sign-ins when no provider host is configured
type unavailableVerifier struct{}

func (unavailableVerifier) Verify(context.Context, string) (*domain.ProviderUser, *jwt.ProviderClaims, error) {
	return nil, nil, common.ErrUnauthorized
}
