package v2

import (
	"net/http"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/gin-gonic/gin"
)

// InvitationHandler handles group invitation endpoints
type InvitationHandler struct {
	invitationService *service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Create godoc
// @Summary      그룹 초대
// @Description  관리자 이상만 초대할 수 있고 관리자 역할 초대는 소유자만 가능합니다
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "그룹 ID"
// @Param        request  body      domain.InvitationRequest  true  "초대 정보"
// @Success      201  {object}  common.V2Response{data=domain.InvitationResponse}
// @Failure      409  {object}  common.V2Response
// @Router       /v2/groups/{id}/invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	groupID, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	var req domain.InvitationRequest
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.invitationService.Create(c.Request.Context(), groupID, currentUser(c), &req)
	if err != nil {
		if common.StatusFor(err) == http.StatusConflict {
			common.V2ErrorResponse(c, http.StatusConflict, "이미 그룹 멤버입니다", err)
			return
		}
		respondError(c, err, "초대 생성 실패")
		return
	}
	common.V2Created(c, inv)
}

// List godoc
// @Summary      대기 중인 초대 목록
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "그룹 ID"
// @Success      200  {object}  common.V2Response{data=[]domain.InvitationResponse}
// @Router       /v2/groups/{id}/invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	groupID, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	invitations, err := h.invitationService.ListPending(c.Request.Context(), groupID, currentUser(c))
	if err != nil {
		respondError(c, err, "초대 목록 조회 실패")
		return
	}
	common.V2Success(c, invitations)
}

// Revoke godoc
// @Summary      초대 취소
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id             path  int  true  "그룹 ID"
// @Param        invitation_id  path  int  true  "초대 ID"
// @Success      200  {object}  common.V2Response
// @Router       /v2/groups/{id}/invitations/{invitation_id} [delete]
func (h *InvitationHandler) Revoke(c *gin.Context) {
	groupID, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	invitationID, ok := pathID(c, "invitation_id", "잘못된 초대 ID")
	if !ok {
		return
	}
	if err := h.invitationService.Revoke(c.Request.Context(), groupID, invitationID, currentUser(c)); err != nil {
		respondError(c, err, "초대 취소 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "초대가 취소되었습니다"})
}

// Accept godoc
// @Summary      초대 수락
// @Description  초대받은 이메일의 사용자만 수락할 수 있습니다
// @Tags         invitations
// @Produce      json
// @Security     BearerAuth
// @Param        token  path  string  true  "초대 토큰"
// @Success      200  {object}  common.V2Response{data=domain.InvitationResponse}
// @Failure      409  {object}  common.V2Response
// @Router       /v2/invitations/{token}/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	inv, err := h.invitationService.Accept(c.Request.Context(), c.Param("token"), currentUser(c))
	if err != nil {
		if common.StatusFor(err) == http.StatusConflict {
			common.V2ErrorResponse(c, http.StatusConflict, "만료되었거나 이미 사용된 초대입니다", err)
			return
		}
		respondError(c, err, "초대 수락 실패")
		return
	}
	common.V2Success(c, inv)
}
