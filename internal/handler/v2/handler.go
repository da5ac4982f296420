// Package v2 implements the /api/v2 JSON endpoints.
package v2

import (
	"errors"
	"net/http"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/damoang/angple-memo/internal/domain"
	"github.com/damoang/angple-memo/internal/middleware"
	"github.com/damoang/angple-memo/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the v2 error envelope.
// message is the user-facing text for server errors and generic failures.
func respondError(c *gin.Context, err error, message string) {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		common.V2ValidationResponse(c, verr.Fields)
		return
	}

	status := common.StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		middleware.RequestLog(c).Error().Err(err).
			Str("path", c.FullPath()).
			Msg(message)
	case http.StatusUnauthorized:
		message = "인증이 필요합니다"
	case http.StatusForbidden:
		message = "권한이 없습니다"
	case http.StatusNotFound:
		message = notFoundMessage(err)
	case http.StatusUnprocessableEntity:
		common.V2ValidationResponse(c, map[string]string{"memo": err.Error()})
		return
	}
	common.V2ErrorResponse(c, status, message, err)
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrMemoNotFound):
		return "메모를 찾을 수 없습니다"
	case errors.Is(err, common.ErrGroupNotFound):
		return "그룹을 찾을 수 없습니다"
	case errors.Is(err, common.ErrInvitationNotFound):
		return "초대를 찾을 수 없습니다"
	case errors.Is(err, common.ErrUserNotFound):
		return "사용자를 찾을 수 없습니다"
	default:
		return "리소스를 찾을 수 없습니다"
	}
}

// bindJSON binds and validates the request body, answering 400/422 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verr *common.ValidationError
		if errors.As(common.FromValidator(err), &verr) {
			common.V2ValidationResponse(c, verr.Fields)
		} else {
			common.V2ErrorResponse(c, http.StatusBadRequest, "잘못된 요청", err)
		}
		return false
	}
	return true
}

// pathID parses an unsigned id path parameter, answering 400 on failure
func pathID(c *gin.Context, key, message string) (uint64, bool) {
	id, err := ginutil.ParamUint64(c, key)
	if err != nil || id == 0 {
		common.V2ErrorResponse(c, http.StatusBadRequest, message, err)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated user. Routes using it sit behind RequireAuth.
func currentUser(c *gin.Context) *domain.User {
	return middleware.GetUser(c)
}
