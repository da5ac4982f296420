package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/damoang/angple-memo/pkg/logger"
	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_ReturnsGeneric500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("database exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database exploded")
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestDeprecation_Headers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Deprecation(DeprecationConfig{SunsetDate: "Sat, 01 Aug 2026 00:00:00 GMT", MigrationGuideURL: "https://docs.example.com/v2"}))
	r.GET("/old", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/old", nil))

	assert.Equal(t, "true", w.Header().Get("Deprecation"))
	assert.Equal(t, "Sat, 01 Aug 2026 00:00:00 GMT", w.Header().Get("Sunset"))
	assert.Equal(t, `<https://docs.example.com/v2>; rel="deprecation"`, w.Header().Get("Link"))
}

func TestCSRFProtection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CSRFProtection("access_token", "POST /sessions"))
	r.POST("/memos", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/sessions", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/sessions", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		method string
		path   string
		setup  func(*http.Request)
		status int
	}{
		{"login with a stale cookie is exempt", http.MethodPost, "/sessions", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "stale"})
		}, http.StatusCreated},
		{"logout with a cookie is still guarded", http.MethodDelete, "/sessions", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "t"})
		}, http.StatusForbidden},
		{"bearer clients are exempt", http.MethodPost, "/memos", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer x")
		}, http.StatusCreated},
		{"anonymous requests pass through", http.MethodPost, "/memos", func(*http.Request) {}, http.StatusCreated},
		{"cookie without csrf token", http.MethodPost, "/memos", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "t"})
		}, http.StatusForbidden},
		{"cookie with mismatched token", http.MethodPost, "/memos", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "t"})
			req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc"})
			req.Header.Set("X-CSRF-Token", "xyz")
		}, http.StatusForbidden},
		{"cookie with matching token", http.MethodPost, "/memos", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "t"})
			req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc"})
			req.Header.Set("X-CSRF-Token", "abc")
		}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGenerateCSRFToken_SetsCookieMatchingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/csrf", GenerateCSRFToken(false))
	r.Use(CSRFProtection("access_token"))
	r.POST("/memos", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			CSRFToken string `json:"csrf_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data.CSRFToken, 64)

	var issued *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CSRFCookieName {
			issued = ck
		}
	}
	require.NotNil(t, issued)
	assert.Equal(t, body.Data.CSRFToken, issued.Value)
	assert.False(t, issued.HttpOnly)

	req := httptest.NewRequest(http.MethodPost, "/memos", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "t"})
	req.AddCookie(issued)
	req.Header.Set("X-CSRF-Token", body.Data.CSRFToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRequestLogger_TagsRequestAndLogsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/memos/:id", func(c *gin.Context) {
		assert.Equal(t, "req-123", c.GetString("request_id"))
		RequestLog(c).Info().Msg("inside")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/memos/42", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var access map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "req-123", access["request_id"])
	assert.Equal(t, "/memos/:id", access["route"])
	assert.Equal(t, float64(http.StatusNoContent), access["status"])
	assert.Contains(t, string(lines[0]), `"request_id":"req-123"`)
}

func TestRequestLog_FallsBackToGlobalLogger(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, logger.GetLogger(), RequestLog(c))
}

func TestMetrics_LabelsRouteTemplateAndAuthSource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuth(stubAuthenticator{"good": nil}), Metrics())
	r.GET("/metrics-route/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-route/:id", "200", "session")
	before := promtestutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/metrics-route/1", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics-route/2", nil))

	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(
		httpRequestsTotal.WithLabelValues(http.MethodGet, "/metrics-route/:id", "200", "anonymous")))
}
