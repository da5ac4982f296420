package ginutil

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// QueryUint64Ptr extracts an optional unsigned id from query parameters.
// A present but malformed value is an error.
func QueryUint64Ptr(c *gin.Context, key string) (*uint64, error) {
	valueStr, ok := c.GetQuery(key)
	if !ok || valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// QueryList collects a list parameter given either repeated (?k=a&k=b) or
// comma-separated (?k=a,b)
func QueryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParamUint64 extracts an unsigned id from path parameters
// Returns the parsed value and error if parsing fails
func ParamUint64(c *gin.Context, key string) (uint64, error) {
	return strconv.ParseUint(c.Param(key), 10, 64)
}
