package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tms-server/internal/pkg/config"
	"tms-server/pkg/constants"
)

// CORSMiddleware 跨域配置
// 允许配置的前端域名，按需放行 *.vercel.app 预览环境
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]bool, len(cfg.AllowedOrigins)+1)
	if cfg.FrontendURL != "" {
		allowed[cfg.FrontendURL] = true
	}
	for _, origin := range cfg.AllowedOrigins {
		allowed[origin] = true
	}

	return cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if allowed[origin] {
				return true
			}
			if cfg.AllowVercelPreview && strings.HasPrefix(origin, "https://") &&
				strings.HasSuffix(origin, ".vercel.app") {
				return true
			}
			return false
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", constants.HeaderAuthorization, constants.HeaderCSRFToken},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// NoCacheMiddleware 业务接口禁用HTTP缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
