package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/damoang/angple-memo/internal/common"
	"github.com/gin-gonic/gin"
)

// Recovery converts panics into a generic 500 response. The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				RequestLog(c).Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if !c.Writer.Written() {
					common.V2ErrorResponse(c, http.StatusInternalServerError, "서버 오류가 발생했습니다", nil)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
