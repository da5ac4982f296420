package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/identity"
	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	tokenKey    = "access_token"
	authErrKey  = "auth_error"
)

// Authenticator resolves a bearer token into an identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Identity, error)
}

type authConfig struct {
	cookieName string
	v1         bool
}

// AuthOption configures RequireAuth and OptionalAuth
type AuthOption func(*authConfig)

// WithCookie also reads the token from the named cookie when no Authorization header is sent
func WithCookie(name string) AuthOption {
	return func(c *authConfig) {
		c.cookieName = name
	}
}

// WithV1Envelope writes failures in the legacy v1 response shape
func WithV1Envelope() AuthOption {
	return func(c *authConfig) {
		c.v1 = true
	}
}

func newAuthConfig(opts []AuthOption) *authConfig {
	cfg := &authConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// extractToken reads "Authorization: Bearer <token>" first, then the cookie
func extractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil {
			return token
		}
	}
	return ""
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrExpiredToken):
		return "토큰이 만료되었습니다"
	case errors.Is(err, common.ErrNotProvisioned):
		return "가입 절차가 필요합니다"
	case errors.Is(err, common.ErrInvalidToken):
		return "유효하지 않은 토큰입니다"
	default:
		return "인증이 필요합니다"
	}
}

// RequireAuth rejects requests without a valid session token or provider JWT
func RequireAuth(auth Authenticator, opts ...AuthOption) gin.HandlerFunc {
	cfg := newAuthConfig(opts)
	return func(c *gin.Context) {
		if GetIdentity(c) != nil {
			c.Next()
			return
		}
		var id *identity.Identity
		var err error
		if prev, ok := c.Get(authErrKey); ok {
			// OptionalAuth already rejected this token
			err, _ = prev.(error)
		} else {
			id, err = auth.Authenticate(c.Request.Context(), extractToken(c, cfg.cookieName))
		}
		if err != nil || id == nil {
			if err == nil {
				err = common.ErrUnauthorized
			}
			// provider and database failures still answer 401
			if common.StatusFor(err) != http.StatusUnauthorized {
				err = common.ErrUnauthorized
			}
			msg := unauthorizedMessage(err)
			if cfg.v1 {
				common.V1ErrorResponse(c, http.StatusUnauthorized, msg)
			} else {
				common.V2ErrorResponse(c, http.StatusUnauthorized, msg, err)
			}
			c.Abort()
			return
		}

		c.Set(identityKey, id)
		c.Set(tokenKey, extractToken(c, cfg.cookieName))
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise continues anonymously
func OptionalAuth(auth Authenticator, opts ...AuthOption) gin.HandlerFunc {
	cfg := newAuthConfig(opts)
	return func(c *gin.Context) {
		if GetIdentity(c) != nil {
			c.Next()
			return
		}
		if token := extractToken(c, cfg.cookieName); token != "" {
			id, err := auth.Authenticate(c.Request.Context(), token)
			if err != nil {
				c.Set(authErrKey, err)
			} else {
				c.Set(identityKey, id)
				c.Set(tokenKey, token)
			}
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated identity or nil
func GetIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*identity.Identity)
	return id
}

// GetUser returns the authenticated user or nil for anonymous requests
func GetUser(c *gin.Context) *domain.User {
	return GetIdentity(c).User()
}

// GetUserID returns the authenticated user's id, 0 when anonymous
func GetUserID(c *gin.Context) uint64 {
	if id := GetIdentity(c); id != nil {
		return id.UserID
	}
	return 0
}

// GetToken returns the token the request authenticated with
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
