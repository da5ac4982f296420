package ginutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestQueryHelpers(t *testing.T) {
	c := newContext("/memos?page=3&per_page=x&tags=a,%20b&tags=c&group_id=9")

	assert.Equal(t, 3, QueryInt(c, "page", 1))
	assert.Equal(t, 20, QueryInt(c, "per_page", 20))
	assert.Equal(t, 7, QueryInt(c, "missing", 7))
	assert.Equal(t, []string{"a", "b", "c"}, QueryList(c, "tags"))

	id, err := QueryUint64Ptr(c, "group_id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint64(9), *id)

	none, err := QueryUint64Ptr(c, "other")
	assert.NoError(t, err)
	assert.Nil(t, none)

	bad := newContext("/memos?group_id=-1")
	_, err = QueryUint64Ptr(bad, "group_id")
	assert.Error(t, err)
}

func TestParamUint64(t *testing.T) {
	c := newContext("/memos/42")
	c.Params = gin.Params{{Key: "id", Value: "42"}, {Key: "bad", Value: "x"}}

	id, err := ParamUint64(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = ParamUint64(c, "bad")
	assert.Error(t, err)
}
