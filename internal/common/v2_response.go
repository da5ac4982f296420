package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// V2Response v2 API response envelope
type V2Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *V2Meta     `json:"meta,omitempty"`
	Error   *V2Error    `json:"error,omitempty"`
}

// V2Meta v2 pagination meta. Query echoes the normalized search term and tag
// filter so clients can render what was actually applied.
type V2Meta struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	Total      int64    `json:"total"`
	TotalPages int64    `json:"total_pages"`
	HasNext    bool     `json:"has_next"`
	Query      string   `json:"query,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// V2Error v2 error body
type V2Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewV2Meta creates V2Meta with computed total_pages
func NewV2Meta(page, perPage int, total int64) *V2Meta {
	if perPage <= 0 {
		return &V2Meta{Page: page, PerPage: perPage, Total: total}
	}
	totalPages := total / int64(perPage)
	if total%int64(perPage) > 0 {
		totalPages++
	}
	return &V2Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
	}
}

// WithFilter records the applied search term and tags
func (m *V2Meta) WithFilter(query string, tags []string) *V2Meta {
	m.Query = query
	if len(tags) > 0 {
		m.Tags = tags
	}
	return m
}

// V2Success returns a v2 success response
func V2Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, V2Response{
		Success: true,
		Data:    data,
	})
}

// V2SuccessWithMeta returns a v2 success response with pagination
func V2SuccessWithMeta(c *gin.Context, data interface{}, meta *V2Meta) {
	c.JSON(http.StatusOK, V2Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// V2Created returns a v2 201 Created response
func V2Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, V2Response{
		Success: true,
		Data:    data,
	})
}

// V2ErrorResponse returns a v2 error response
func V2ErrorResponse(c *gin.Context, status int, message string, err error) {
	v2Err := &V2Error{
		Code:    getErrorCode(status),
		Message: message,
	}
	if err != nil && status < http.StatusInternalServerError {
		v2Err.Details = err.Error()
	}
	c.JSON(status, V2Response{
		Success: false,
		Error:   v2Err,
	})
}

// V2ValidationResponse returns a 422 with field level messages
func V2ValidationResponse(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, V2Response{
		Success: false,
		Error: &V2Error{
			Code:    getErrorCode(http.StatusUnprocessableEntity),
			Message: "입력값을 확인해주세요",
			Details: fields,
		},
	})
}
