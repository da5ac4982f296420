package v2

import (
	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles group and membership endpoints
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// List godoc
// @Summary      내 그룹 목록
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V2Response{data=[]domain.GroupResponse}
// @Router       /v2/groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "그룹 목록 조회 실패")
		return
	}
	common.V2Success(c, groups)
}

// Create godoc
// @Summary      그룹 생성
// @Description  생성한 사용자가 그룹 소유자가 됩니다
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.GroupRequest  true  "그룹"
// @Success      201  {object}  common.V2Response{data=domain.GroupResponse}
// @Router       /v2/groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req domain.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err, "그룹 생성 실패")
		return
	}
	common.V2Created(c, group)
}

// Get godoc
// @Summary      그룹 조회
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "그룹 ID"
// @Success      200  {object}  common.V2Response{data=domain.GroupResponse}
// @Failure      403  {object}  common.V2Response
// @Router       /v2/groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	group, err := h.groupService.Get(c.Request.Context(), id, currentUser(c))
	if err != nil {
		respondError(c, err, "그룹 조회 실패")
		return
	}
	common.V2Success(c, group)
}

// Update godoc
// @Summary      그룹 수정
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                  true  "그룹 ID"
// @Param        request  body      domain.GroupRequest  true  "그룹"
// @Success      200  {object}  common.V2Response{data=domain.GroupResponse}
// @Router       /v2/groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	var req domain.GroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.groupService.Update(c.Request.Context(), id, currentUser(c), &req)
	if err != nil {
		respondError(c, err, "그룹 수정 실패")
		return
	}
	common.V2Success(c, group)
}

// Delete godoc
// @Summary      그룹 삭제
// @Description  소유자만 삭제할 수 있으며 그룹 메모는 작성자의 개인 메모가 됩니다
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "그룹 ID"
// @Success      200  {object}  common.V2Response
// @Router       /v2/groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		respondError(c, err, "그룹 삭제 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "그룹이 삭제되었습니다"})
}

// Members godoc
// @Summary      그룹 멤버 목록
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "그룹 ID"
// @Success      200  {object}  common.V2Response{data=[]domain.UserGroup}
// @Router       /v2/groups/{id}/members [get]
func (h *GroupHandler) Members(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	members, err := h.groupService.Members(c.Request.Context(), id, currentUser(c))
	if err != nil {
		respondError(c, err, "멤버 목록 조회 실패")
		return
	}
	common.V2Success(c, members)
}

// RemoveMember godoc
// @Summary      그룹 멤버 내보내기
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int  true  "그룹 ID"
// @Param        user_id  path  int  true  "사용자 ID"
// @Success      200  {object}  common.V2Response
// @Failure      409  {object}  common.V2Response
// @Router       /v2/groups/{id}/members/{user_id} [delete]
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id", "잘못된 사용자 ID")
	if !ok {
		return
	}
	if err := h.groupService.RemoveMember(c.Request.Context(), id, userID, currentUser(c)); err != nil {
		respondError(c, err, "멤버 내보내기 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "멤버를 내보냈습니다"})
}

// Leave godoc
// @Summary      그룹 탈퇴
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "그룹 ID"
// @Success      200  {object}  common.V2Response
// @Failure      409  {object}  common.V2Response
// @Router       /v2/groups/{id}/leave [post]
func (h *GroupHandler) Leave(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 그룹 ID")
	if !ok {
		return
	}
	if err := h.groupService.Leave(c.Request.Context(), id, currentUser(c)); err != nil {
		respondError(c, err, "그룹 탈퇴 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "그룹에서 나왔습니다"})
}
