package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"tms-server/pkg/constants"
	"tms-server/pkg/utils"
)

// CSRFMiddleware 双提交Cookie校验
// 仅对Cookie会话的非安全方法生效；Bearer调用方不受同源Cookie攻击影响，直接放行
// 需在 AuthMiddleware 之后挂载
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) || !isCookieAuth(c) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(constants.CookieCSRFToken)
		if err != nil || cookie == "" {
			utils.ErrorWithCode(c, 403, "缺少CSRF Token")
			c.Abort()
			return
		}

		header := c.GetHeader(constants.HeaderCSRFToken)
		if subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.ErrorWithCode(c, 403, "CSRF Token校验失败")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}
