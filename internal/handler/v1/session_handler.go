// Package v1 keeps the legacy /api/v1 session endpoints alive for older clients.
package v1

import (
	"net/http"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves v1 login and logout
type SessionHandler struct {
	authService *service.AuthService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(authService *service.AuthService) *SessionHandler {
	return &SessionHandler{authService: authService}
}

// Login godoc
// @Summary      로그인 (v1)
// @Tags         v1
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "로그인 정보"
// @Success      200  {object}  common.V1Response{data=domain.SessionResponse}
// @Failure      401  {object}  common.V1Response
// @Router       /v1/sessions [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.V1ErrorResponse(c, http.StatusBadRequest, "잘못된 요청")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		status := common.StatusFor(err)
		if status == http.StatusUnauthorized {
			common.V1ErrorResponse(c, status, "이메일 또는 비밀번호가 올바르지 않습니다")
			return
		}
		common.V1ErrorResponse(c, status, "로그인 실패")
		return
	}
	common.V1Success(c, http.StatusOK, resp, "")
}

// Logout godoc
// @Summary      로그아웃 (v1)
// @Tags         v1
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V1Response
// @Router       /v1/sessions [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		common.V1ErrorResponse(c, common.StatusFor(err), "로그아웃 실패")
		return
	}
	common.V1Success(c, http.StatusOK, nil, "로그아웃 되었습니다")
}
