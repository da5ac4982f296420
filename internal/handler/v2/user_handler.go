package v2

import (
	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler handles signup and the current user's account
type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *service.AuthService, userService *service.UserService) *UserHandler {
	return &UserHandler{authService: authService, userService: userService}
}

// Signup godoc
// @Summary      회원가입
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SignupRequest  true  "가입 정보"
// @Success      201  {object}  common.V2Response{data=domain.User}
// @Failure      409  {object}  common.V2Response
// @Failure      422  {object}  common.V2Response
// @Router       /v2/users [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "회원가입 실패")
		return
	}
	common.V2Created(c, user)
}

// Me godoc
// @Summary      내 정보 조회
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V2Response{data=domain.User}
// @Failure      401  {object}  common.V2Response
// @Router       /v2/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err, "사용자 조회 실패")
		return
	}
	common.V2Success(c, user)
}

// UpdateSettings godoc
// @Summary      환경설정 변경
// @Description  테마, 글꼴, 단축키 사용 여부를 변경합니다
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.SettingsRequest  true  "변경할 설정"
// @Success      200  {object}  common.V2Response{data=domain.User}
// @Failure      422  {object}  common.V2Response
// @Router       /v2/users/me/settings [patch]
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req domain.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateSettings(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		respondError(c, err, "설정 변경 실패")
		return
	}
	common.V2Success(c, user)
}

// Delete godoc
// @Summary      회원 탈퇴
// @Description  소유한 그룹이 있으면 먼저 삭제해야 합니다
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V2Response
// @Failure      409  {object}  common.V2Response
// @Router       /v2/users/me [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), currentUser(c).ID); err != nil {
		respondError(c, err, "회원 탈퇴 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "탈퇴 처리되었습니다"})
}
