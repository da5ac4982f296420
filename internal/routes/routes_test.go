package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/damoang/angple-memo/internal/config"
	"github.com/damoang/angple-memo/internal/testutil"
	"github.com/damoang/angple-memo/pkg/idp"
	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Page       int   `json:"page"`
		PerPage    int   `json:"per_page"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
	} `json:"meta"`
	Error json.RawMessage `json:"error"`
}

type RoutesSuite struct {
	suite.Suite
	db       *gorm.DB
	router   *gin.Engine
	provider *httptest.Server
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.db = testutil.NewDB(s.T())

	mr := miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	// the provider accepts any bearer token and reports the user "uuid-kim"
	s.provider = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"uuid-kim","email":"kim@example.com","user_metadata":{"full_name":"Kim"}}`))
	}))
	s.T().Cleanup(s.provider.Close)

	cfg := config.Default()
	s.router = New(Dependencies{
		Config:           cfg,
		DB:               s.db,
		Redis:            client,
		IdentityProvider: idp.NewClient(idp.Options{BaseURL: s.provider.URL, Retries: 0}),
	})
}

func (s *RoutesSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *RoutesSuite) signupAndLogin(name, email string) string {
	w, _ := s.do(http.MethodPost, "/api/v2/users", "", map[string]string{"name": name, "email": email, "password": "password1"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, env := s.do(http.MethodPost, "/api/v2/sessions", "", map[string]string{"email": email, "password": "password1"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &session))
	return session.Token
}

func (s *RoutesSuite) providerToken(sub string) string {
	claims := gojwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix(), "email": "kim@example.com"}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
	s.Require().NoError(err)
	return token
}

func (s *RoutesSuite) TestHealthAndNotFound() {
	w, _ := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"database":"ok"`)
	s.Contains(w.Body.String(), `"redis":"ok"`)

	w, _ = s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "/memos/search")

	w, env := s.do(http.MethodGet, "/api/v2/nope", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.False(env.Success)
	s.Contains(string(env.Error), "NOT_FOUND")
}

func (s *RoutesSuite) TestMemoLifecycle() {
	token := s.signupAndLogin("kim", "kim@example.com")

	w, env := s.do(http.MethodPost, "/api/v2/memos", token, map[string]string{"title": " "})
	s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	s.Contains(string(env.Error), "VALIDATION_FAILED")

	w, env = s.do(http.MethodPost, "/api/v2/memos", token, map[string]string{"title": "Grocery list", "tags": "Home, errands"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var memo struct {
		ID         uint64   `json:"id"`
		Visibility string   `json:"visibility"`
		Tags       []struct{ Name string } `json:"tags"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &memo))
	s.Equal("private_memo", memo.Visibility)
	s.Len(memo.Tags, 2)

	_, _ = s.do(http.MethodPost, "/api/v2/memos", token, map[string]string{"description": "quarterly plan", "tags": "work"})

	w, env = s.do(http.MethodGet, "/api/v2/memos?tags=home,errands", token, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Require().NotNil(env.Meta)
	s.Equal(int64(1), env.Meta.Total)

	w, env = s.do(http.MethodGet, "/api/v2/memos/search?q=PLAN&per_page=500", token, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), env.Meta.Total)
	s.Equal(100, env.Meta.PerPage)

	w, _ = s.do(http.MethodGet, "/api/v2/memos/search", token, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w, env = s.do(http.MethodGet, "/api/v2/tags", token, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), "errands")

	path := "/api/v2/memos/" + jsonID(memo.ID)
	w, _ = s.do(http.MethodGet, path, "", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPatch, path+"/visibility", token, map[string]string{"visibility": "public_memo"})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodGet, path, "", nil)
	s.Equal(http.StatusOK, w.Code)

	other := s.signupAndLogin("lee", "lee@example.com")
	w, _ = s.do(http.MethodDelete, path, other, nil)
	s.Equal(http.StatusForbidden, w.Code)
	w, _ = s.do(http.MethodDelete, path, token, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RoutesSuite) TestSessionLogout() {
	token := s.signupAndLogin("kim", "kim@example.com")

	w, _ := s.do(http.MethodGet, "/api/v2/users/me", token, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v2/sessions", token, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v2/users/me", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v2/sessions", "", map[string]string{"email": "kim@example.com", "password": "wrong-one"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RoutesSuite) TestCookieLoginAndCSRF() {
	s.signupAndLogin("kim", "kim@example.com")
	stale := &http.Cookie{Name: "access_token", Value: "expired-session"}

	login, _ := json.Marshal(map[string]string{"email": "kim@example.com", "password": "password1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/sessions", bytes.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(stale)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var session *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "access_token" {
			session = ck
		}
	}
	s.Require().NotNil(session)

	memo, _ := json.Marshal(map[string]string{"title": "cookie memo"})
	req = httptest.NewRequest(http.MethodPost, "/api/v2/memos", bytes.NewReader(memo))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(session)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusForbidden, w.Code)

	w, env := s.do(http.MethodGet, "/api/v2/csrf", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var issued struct {
		CSRFToken string `json:"csrf_token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &issued))
	s.Require().NotEmpty(issued.CSRFToken)

	req = httptest.NewRequest(http.MethodPost, "/api/v2/memos", bytes.NewReader(memo))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", issued.CSRFToken)
	req.AddCookie(session)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: issued.CSRFToken})
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *RoutesSuite) TestV1Sessions() {
	s.signupAndLogin("kim", "kim@example.com")

	w, _ := s.do(http.MethodPost, "/api/v1/sessions", "", map[string]string{"email": "kim@example.com", "password": "password1"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("true", w.Header().Get("Deprecation"))

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.True(body.Success)

	w, _ = s.do(http.MethodDelete, "/api/v1/sessions", body.Data.Token, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/sessions", body.Data.Token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"success":false,"error":"유효하지 않은 토큰입니다"}`, w.Body.String())

	w, _ = s.do(http.MethodDelete, "/api/v1/sessions", s.providerToken("uuid-kim"), nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RoutesSuite) TestProviderSignIn() {
	token := s.providerToken("uuid-kim")

	w, env := s.do(http.MethodGet, "/api/v2/users/me", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(string(env.Error), "가입 절차가 필요합니다")

	w, _ = s.do(http.MethodPost, "/api/v2/sessions/provider", "", map[string]string{"access_token": token})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(http.MethodGet, "/api/v2/users/me", token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), "kim@example.com")

	w, _ = s.do(http.MethodGet, "/api/v2/users/me", s.providerToken("someone-else"), nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RoutesSuite) TestGroupInvitationFlow() {
	owner := s.signupAndLogin("owner", "owner@example.com")
	invitee := s.signupAndLogin("invitee", "invitee@example.com")

	w, env := s.do(http.MethodPost, "/api/v2/groups", owner, map[string]string{"name": "team"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var group struct {
		ID uint64 `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &group))
	groupPath := "/api/v2/groups/" + jsonID(group.ID)

	w, _ = s.do(http.MethodPost, "/api/v2/memos", owner, map[string]interface{}{"title": "team plan", "group_id": group.ID})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(http.MethodGet, "/api/v2/memos?group_id="+jsonID(group.ID), invitee, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, env = s.do(http.MethodPost, groupPath+"/invitations", owner, map[string]string{"email": "invitee@example.com"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var inv struct {
		Token string `json:"token"`
		State string `json:"state"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &inv))
	s.Equal("pending", inv.State)

	w, _ = s.do(http.MethodPost, "/api/v2/invitations/"+inv.Token+"/accept", invitee, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/v2/invitations/"+inv.Token+"/accept", invitee, nil)
	s.Equal(http.StatusConflict, w.Code)

	w, env = s.do(http.MethodGet, "/api/v2/memos?group_id="+jsonID(group.ID), invitee, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), env.Meta.Total)

	w, env = s.do(http.MethodGet, groupPath+"/members", invitee, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"role":"member"`)

	w, _ = s.do(http.MethodDelete, "/api/v2/users/me", owner, nil)
	s.Equal(http.StatusConflict, w.Code)

	w, _ = s.do(http.MethodPost, groupPath+"/leave", invitee, nil)
	s.Equal(http.StatusOK, w.Code)
}

func jsonID(id uint64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
