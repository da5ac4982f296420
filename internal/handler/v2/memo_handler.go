package v2

import (
	"net/http"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/internal/service"
	"github.com/damoang/angple-memo/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// MemoHandler handles memo and tag endpoints
type MemoHandler struct {
	memoService *service.MemoService
}

// NewMemoHandler creates a new MemoHandler
func NewMemoHandler(memoService *service.MemoService) *MemoHandler {
	return &MemoHandler{memoService: memoService}
}

// parseMemoQuery reads q, tags, sort, direction, page, per_page and group_id
func parseMemoQuery(c *gin.Context) (domain.MemoQuery, bool) {
	groupID, err := ginutil.QueryUint64Ptr(c, "group_id")
	if err != nil {
		common.V2ErrorResponse(c, http.StatusBadRequest, "잘못된 그룹 ID", err)
		return domain.MemoQuery{}, false
	}
	return domain.MemoQuery{
		GroupID:   groupID,
		Search:    c.Query("q"),
		Tags:      ginutil.QueryList(c, "tags"),
		Sort:      c.Query("sort"),
		Direction: c.Query("direction"),
		Page:      ginutil.QueryInt(c, "page", 1),
		PerPage:   ginutil.QueryInt(c, "per_page", domain.DefaultPerPage),
	}, true
}

// List godoc
// @Summary      메모 목록 조회
// @Description  내 메모 또는 그룹 메모를 검색, 태그, 정렬 조건으로 조회합니다
// @Tags         memos
// @Produce      json
// @Security     BearerAuth
// @Param        q          query  string  false  "제목/내용 검색어"
// @Param        tags       query  string  false  "태그 (쉼표 구분, 모두 포함)"
// @Param        sort       query  string  false  "정렬 기준 (updated_at, created_at, title)"
// @Param        direction  query  string  false  "정렬 방향 (asc, desc)"
// @Param        page       query  int     false  "페이지 번호"  default(1)
// @Param        per_page   query  int     false  "페이지당 항목 수"  default(20)
// @Param        group_id   query  int     false  "그룹 ID"
// @Success      200  {object}  common.V2Response{data=[]domain.Memo}
// @Failure      403  {object}  common.V2Response
// @Router       /v2/memos [get]
func (h *MemoHandler) List(c *gin.Context) {
	q, ok := parseMemoQuery(c)
	if !ok {
		return
	}
	memos, total, q, err := h.memoService.List(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respondError(c, err, "메모 목록 조회 실패")
		return
	}
	common.V2SuccessWithMeta(c, memos, common.NewV2Meta(q.Page, q.PerPage, total).WithFilter(q.Search, q.Tags))
}

// Search godoc
// @Summary      메모 검색
// @Description  검색어(q)가 필수인 목록 조회입니다
// @Tags         memos
// @Produce      json
// @Security     BearerAuth
// @Param        q  query  string  true  "검색어"
// @Success      200  {object}  common.V2Response{data=[]domain.Memo}
// @Failure      422  {object}  common.V2Response
// @Router       /v2/memos/search [get]
func (h *MemoHandler) Search(c *gin.Context) {
	q, ok := parseMemoQuery(c)
	if !ok {
		return
	}
	memos, total, q, err := h.memoService.Search(c.Request.Context(), currentUser(c), q)
	if err != nil {
		respondError(c, err, "메모 검색 실패")
		return
	}
	common.V2SuccessWithMeta(c, memos, common.NewV2Meta(q.Page, q.PerPage, total).WithFilter(q.Search, q.Tags))
}

// Get godoc
// @Summary      메모 조회
// @Description  공개 메모는 로그인 없이 조회할 수 있습니다
// @Tags         memos
// @Produce      json
// @Param        id  path  int  true  "메모 ID"
// @Success      200  {object}  common.V2Response{data=domain.Memo}
// @Failure      403  {object}  common.V2Response
// @Failure      404  {object}  common.V2Response
// @Router       /v2/memos/{id} [get]
func (h *MemoHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 메모 ID")
	if !ok {
		return
	}
	memo, err := h.memoService.Get(c.Request.Context(), id, middleware.GetUser(c))
	if err != nil {
		respondError(c, err, "메모 조회 실패")
		return
	}
	common.V2Success(c, memo)
}

// Create godoc
// @Summary      메모 작성
// @Description  제목과 내용이 모두 비어 있으면 태그가 하나 이상 필요합니다
// @Tags         memos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.MemoRequest  true  "메모"
// @Success      201  {object}  common.V2Response{data=domain.Memo}
// @Failure      422  {object}  common.V2Response
// @Router       /v2/memos [post]
func (h *MemoHandler) Create(c *gin.Context) {
	var req domain.MemoRequest
	if !bindJSON(c, &req) {
		return
	}
	memo, err := h.memoService.Create(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err, "메모 작성 실패")
		return
	}
	common.V2Created(c, memo)
}

// Update godoc
// @Summary      메모 수정
// @Description  태그는 전달된 목록으로 교체됩니다
// @Tags         memos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                 true  "메모 ID"
// @Param        request  body      domain.MemoRequest  true  "메모"
// @Success      200  {object}  common.V2Response{data=domain.Memo}
// @Failure      403  {object}  common.V2Response
// @Failure      404  {object}  common.V2Response
// @Router       /v2/memos/{id} [put]
func (h *MemoHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 메모 ID")
	if !ok {
		return
	}
	var req domain.MemoRequest
	if !bindJSON(c, &req) {
		return
	}
	memo, err := h.memoService.Update(c.Request.Context(), id, currentUser(c), &req)
	if err != nil {
		respondError(c, err, "메모 수정 실패")
		return
	}
	common.V2Success(c, memo)
}

// SetVisibility godoc
// @Summary      메모 공개 범위 변경
// @Tags         memos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "메모 ID"
// @Param        request  body      domain.VisibilityRequest  true  "공개 범위"
// @Success      200  {object}  common.V2Response{data=domain.Memo}
// @Router       /v2/memos/{id}/visibility [patch]
func (h *MemoHandler) SetVisibility(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 메모 ID")
	if !ok {
		return
	}
	var req domain.VisibilityRequest
	if !bindJSON(c, &req) {
		return
	}
	memo, err := h.memoService.SetVisibility(c.Request.Context(), id, currentUser(c), req.Visibility)
	if err != nil {
		respondError(c, err, "공개 범위 변경 실패")
		return
	}
	common.V2Success(c, memo)
}

// Delete godoc
// @Summary      메모 삭제
// @Tags         memos
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "메모 ID"
// @Success      200  {object}  common.V2Response
// @Failure      403  {object}  common.V2Response
// @Router       /v2/memos/{id} [delete]
func (h *MemoHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "잘못된 메모 ID")
	if !ok {
		return
	}
	if err := h.memoService.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		respondError(c, err, "메모 삭제 실패")
		return
	}
	common.V2Success(c, gin.H{"message": "메모가 삭제되었습니다"})
}

// Tags godoc
// @Summary      내 태그 목록
// @Description  내 메모에 쓰인 태그와 사용 횟수를 조회합니다
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.V2Response{data=[]domain.TagCount}
// @Router       /v2/tags [get]
func (h *MemoHandler) Tags(c *gin.Context) {
	tags, err := h.memoService.Tags(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "태그 목록 조회 실패")
		return
	}
	common.V2Success(c, tags)
}
