package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tms-server/internal/pkg/config"
	"tms-server/internal/pkg/jwt"
	"tms-server/pkg/constants"
	"tms-server/pkg/utils"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{}
	jwt.Init("test-secret")

	r := gin.New()
	authed := r.Group("/api")
	authed.Use(AuthMiddleware())
	authed.Use(CSRFMiddleware())
	authed.GET("/ping", func(c *gin.Context) { utils.Success(c, "pong") })
	authed.POST("/write", func(c *gin.Context) { utils.Success(c, "ok") })

	active := authed.Group("")
	active.Use(RequireActive())
	active.GET("/active-only", func(c *gin.Context) { utils.Success(c, "ok") })

	admin := authed.Group("")
	admin.Use(RequireAdmin())
	admin.GET("/admin-only", func(c *gin.Context) { utils.Success(c, "ok") })

	return r
}

func issueToken(t *testing.T, role, status string) string {
	t.Helper()
	token, err := jwt.GenerateToken(1, "u@example.com", "u", role, status)
	require.NoError(t, err)
	return token
}

func TestAuthMiddlewareBearer(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, constants.RoleUser, constants.UserStatusActive)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareMissingCredentials(t *testing.T) {
	r := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareCookie(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, constants.RoleUser, constants.UserStatusActive)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFRequiredForCookieWrites(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, constants.RoleUser, constants.UserStatusActive)

	// Cookie会话写操作缺少CSRF Token
	req := httptest.NewRequest(http.MethodPost, "/api/write", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Cookie与Header不一致
	req = httptest.NewRequest(http.MethodPost, "/api/write", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	req.AddCookie(&http.Cookie{Name: constants.CookieCSRFToken, Value: "aaa"})
	req.Header.Set(constants.HeaderCSRFToken, "bbb")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 双提交一致
	req = httptest.NewRequest(http.MethodPost, "/api/write", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	req.AddCookie(&http.Cookie{Name: constants.CookieCSRFToken, Value: "aaa"})
	req.Header.Set(constants.HeaderCSRFToken, "aaa")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFExemptions(t *testing.T) {
	r := setupAuthRouter(t)
	token := issueToken(t, constants.RoleUser, constants.UserStatusActive)

	// Bearer调用方不校验CSRF
	req := httptest.NewRequest(http.MethodPost, "/api/write", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Cookie会话的安全方法不校验CSRF
	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.AddCookie(&http.Cookie{Name: constants.CookieAccessToken, Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireActiveBlocksPending(t *testing.T) {
	r := setupAuthRouter(t)

	pending := issueToken(t, constants.RoleUser, constants.UserStatusPending)
	req := httptest.NewRequest(http.MethodGet, "/api/active-only", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+pending)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	active := issueToken(t, constants.RoleUser, constants.UserStatusActive)
	req = httptest.NewRequest(http.MethodGet, "/api/active-only", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+active)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminBlocksUser(t *testing.T) {
	r := setupAuthRouter(t)

	user := issueToken(t, constants.RoleUser, constants.UserStatusActive)
	req := httptest.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+user)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := issueToken(t, constants.RoleAdmin, constants.UserStatusActive)
	req = httptest.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set(constants.HeaderAuthorization, constants.HeaderBearerPrefix+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
