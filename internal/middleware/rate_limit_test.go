package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerMinute = 2

	r := gin.New()
	r.Use(RateLimit(client, cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimit_NilClientAndRedisFailureFailOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	for _, c := range []*redis.Client{nil, client} {
		r := gin.New()
		r.Use(RateLimit(c, RateLimitConfig{RequestsPerMinute: 1}))
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimit_KeysByUserAndUsesV1Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := DefaultRateLimitConfig()
	cfg.RequestsPerMinute = 1
	cfg.V1Envelope = true

	auth := stubAuthenticator{"token-a": nil, "token-b": nil}
	r := gin.New()
	r.Use(OptionalAuth(auth), RateLimit(client, cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	send := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("token-a").Code)
	blocked := send("token-a")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Contains(t, blocked.Body.String(), `"success":false`)
	assert.NotContains(t, blocked.Body.String(), `"code"`)

	// both stub tokens resolve to the same user id
	assert.Equal(t, http.StatusTooManyRequests, send("token-b").Code)
	assert.True(t, mr.Exists(DefaultRateLimitConfig().KeyPrefix+"user:7"))
}
