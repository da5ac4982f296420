package v2

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/identity"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/gin-gonic/gin"
)

// ProviderSignInRequest carries the identity provider access token
type ProviderSignInRequest struct {
	AccessToken string `json:"access_token"`
}

// TokenForgetter drops cached verification results for a provider token
type TokenForgetter interface {
	Forget(ctx context.Context, token string)
}

// SessionHandler handles login, provider sign-in and logout
type SessionHandler struct {
	authService         *service.AuthService
	provisioningService *service.ProvisioningService
	forgetter           TokenForgetter
	cookieName          string
	secureCookie        bool
}

// NewSessionHandler creates a new SessionHandler
// forgetter may be nil when no identity provider is configured.
func NewSessionHandler(authService *service.AuthService, provisioningService *service.ProvisioningService, forgetter TokenForgetter, cookieName string, secureCookie bool) *SessionHandler {
	return &SessionHandler{
		authService:         authService,
		provisioningService: provisioningService,
		forgetter:           forgetter,
		cookieName:          cookieName,
		secureCookie:        secureCookie,
	}
}

func (h *SessionHandler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	if h.cookieName == "" {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secureCookie, true)
}

// Login godoc
// @Summary      로그인
// @Description  이메일과 비밀번호로 세션 토큰을 발급합니다
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "로그인 정보"
// @Success      200  {object}  common.V2Response{data=domain.SessionResponse}
// @Failure      401  {object}  common.V2Response
// @Failure      422  {object}  common.V2Response
// @Router       /v2/sessions [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if common.StatusFor(err) == http.StatusUnauthorized {
			common.V2ErrorResponse(c, http.StatusUnauthorized, "이메일 또는 비밀번호가 올바르지 않습니다", nil)
			return
		}
		respondError(c, err, "로그인 실패")
		return
	}
	h.setCookie(c, resp.Token, resp.ExpiresAt)
	common.V2Success(c, resp)
}

// ProviderSignIn godoc
// @Summary      외부 인증 로그인
// @Description  인증 제공자 토큰을 검증하고 최초 로그인 시 계정을 연결합니다
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      ProviderSignInRequest  false  "인증 제공자 토큰 (없으면 Authorization 헤더 사용)"
// @Success      200  {object}  common.V2Response{data=service.ProvisionResult}
// @Failure      401  {object}  common.V2Response
// @Router       /v2/sessions/provider [post]
func (h *SessionHandler) ProviderSignIn(c *gin.Context) {
	var req ProviderSignInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.V2ErrorResponse(c, http.StatusBadRequest, "잘못된 요청", err)
			return
		}
	}
	token := strings.TrimSpace(req.AccessToken)
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
	}
	if token == "" {
		common.V2ErrorResponse(c, http.StatusUnauthorized, "인증 토큰이 필요합니다", nil)
		return
	}

	result, err := h.provisioningService.SignIn(c.Request.Context(), token)
	if err != nil {
		// verification failures are never reported as server errors
		common.V2ErrorResponse(c, http.StatusUnauthorized, "유효하지 않은 토큰입니다", nil)
		return
	}
	h.setCookie(c, token, result.ExpiresAt)
	common.V2Success(c, result)
}

// Logout godoc
// @Summary      로그아웃
// @Description  현재 세션 토큰을 삭제합니다
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V2Response
// @Failure      401  {object}  common.V2Response
// @Router       /v2/sessions [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	token := middleware.GetToken(c)
	switch middleware.GetIdentity(c).Source {
	case identity.SourceSession:
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err, "로그아웃 실패")
			return
		}
	case identity.SourceProvider:
		if h.forgetter != nil {
			h.forgetter.Forget(c.Request.Context(), token)
		}
	}
	if h.cookieName != "" {
		c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	}
	common.V2Success(c, gin.H{"message": "로그아웃 되었습니다"})
}
