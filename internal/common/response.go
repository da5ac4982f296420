package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// V1Response legacy v1 API envelope: { success, data|error, message? }
type V1Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// V1Success returns a v1 success response
func V1Success(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, V1Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// V1ErrorResponse returns a v1 error response
func V1ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, V1Response{
		Success: false,
		Error:   message,
	})
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_FAILED"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
