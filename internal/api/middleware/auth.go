package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tms-server/internal/pkg/jwt"
	"tms-server/pkg/constants"
	pkgErrors "tms-server/pkg/errors"
	"tms-server/pkg/utils"
)

const contextKeyCookieAuth = "cookie_auth"

// AuthMiddleware JWT认证中间件
// 优先取 Authorization Bearer，缺失时回退 httpOnly Cookie（浏览器会话）
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie, err := extractToken(c)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			utils.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUser, claims)
		c.Set(contextKeyCookieAuth, fromCookie)
		c.Next()
	}
}

func extractToken(c *gin.Context) (token string, fromCookie bool, err error) {
	authHeader := c.GetHeader(constants.HeaderAuthorization)
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			return "", false, pkgErrors.New(pkgErrors.CodeUnauthorized, "Authorization格式错误")
		}
		return strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix), false, nil
	}

	cookie, cookieErr := c.Cookie(constants.CookieAccessToken)
	if cookieErr != nil || cookie == "" {
		return "", false, pkgErrors.New(pkgErrors.CodeUnauthorized, "缺少认证凭据")
	}
	return cookie, true, nil
}

// RequireActive 仅允许 ACTIVE 用户访问业务接口
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetCurrentUser(c)
		if claims == nil {
			utils.Error(c, pkgErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Status != constants.UserStatusActive {
			utils.Error(c, pkgErrors.ErrUserNotActive)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 仅允许管理员访问
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetCurrentUser(c)
		if claims == nil {
			utils.Error(c, pkgErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role != constants.RoleAdmin {
			utils.Error(c, pkgErrors.ErrAdminRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentUser 从context获取当前用户Claims
func GetCurrentUser(c *gin.Context) *jwt.UserClaims {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	claims, ok := value.(*jwt.UserClaims)
	if !ok {
		return nil
	}
	return claims
}

// isCookieAuth 当前请求是否来自Cookie会话
func isCookieAuth(c *gin.Context) bool {
	return c.GetBool(contextKeyCookieAuth)
}
