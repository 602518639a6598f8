package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"tms-server/internal/api/handler"
	"tms-server/internal/api/middleware"
	"tms-server/internal/pkg/config"
	"tms-server/internal/repository"
	"tms-server/internal/service"
)

// Setup 设置路由
func Setup(cfg *config.Config) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(&cfg.CORS))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus 指标
	r.GET("/metrics", handler.MetricsHandler())

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 上传文件静态服务
	imageDir := cfg.Upload.ImageDir
	if imageDir == "" {
		imageDir = "uploads/images"
	}
	r.Static("/uploads/images", imageDir)

	// 获取数据库连接
	db := cfg.DB.(*gorm.DB)

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	testCaseRepo := repository.NewTestCaseRepository(db)
	planRepo := repository.NewPlanRepository(db)

	// 初始化Service
	authService := service.NewAuthService(userRepo)
	adminService := service.NewAdminService(userRepo)
	folderService := service.NewFolderService(db, folderRepo)
	testCaseService := service.NewTestCaseService(db, testCaseRepo, folderRepo)
	planService := service.NewPlanService(db, planRepo, testCaseRepo)
	dashboardService := service.NewDashboardService(db)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	adminHandler := handler.NewAdminHandler(adminService)
	folderHandler := handler.NewFolderHandler(folderService)
	testCaseHandler := handler.NewTestCaseHandler(testCaseService)
	planHandler := handler.NewPlanHandler(planService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	uploadHandler := handler.NewUploadHandler(&cfg.Upload)

	api := r.Group("/api")
	api.Use(middleware.NoCacheMiddleware())
	{
		// 认证入口（无需token，单IP限流防爆破）
		authRPS := cfg.RateLimit.AuthRPS
		if authRPS <= 0 {
			authRPS = 5
		}
		authBurst := cfg.RateLimit.AuthBurst
		if authBurst <= 0 {
			authBurst = 10
		}
		public := api.Group("/auth")
		public.Use(middleware.RateLimitPerIP(rate.Limit(authRPS), authBurst))
		{
			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)
		}

		// 需要认证的路由（Cookie会话附加CSRF双提交校验）
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware())
		authed.Use(middleware.CSRFMiddleware())
		{
			// PENDING 用户也可以查看自己的状态和退出
			authed.GET("/auth/me", authHandler.GetMe)
			authed.POST("/auth/logout", authHandler.Logout)

			// 业务路由仅对激活用户开放
			active := authed.Group("")
			active.Use(middleware.RequireActive())
			{
				active.PATCH("/auth/profile", authHandler.UpdateProfile)
				active.POST("/auth/change-password", authHandler.ChangePassword)

				// 文件夹
				folderGroup := active.Group("/folders")
				{
					folderGroup.GET("/tree", folderHandler.GetTree)
					folderGroup.POST("", folderHandler.Create)
					folderGroup.PATCH("/reorder", folderHandler.Reorder)
					folderGroup.PATCH("/:id/move", folderHandler.Move)
					folderGroup.PATCH("/:id/rename", folderHandler.Rename)
					folderGroup.DELETE("/:id", folderHandler.Delete)
					folderGroup.GET("/:id/testcases", testCaseHandler.ListByFolder)
				}

				// 测试用例
				testCaseGroup := active.Group("/testcases")
				{
					testCaseGroup.GET("", testCaseHandler.List)
					testCaseGroup.POST("", testCaseHandler.Create)
					testCaseGroup.POST("/reorder", testCaseHandler.Reorder)
					testCaseGroup.POST("/move", testCaseHandler.Move)
					testCaseGroup.POST("/import", testCaseHandler.Import)
					testCaseGroup.GET("/export", testCaseHandler.Export)
					testCaseGroup.PATCH("/bulk", testCaseHandler.BulkUpdate)
					testCaseGroup.DELETE("/bulk", testCaseHandler.BulkDelete)
					testCaseGroup.GET("/:id", testCaseHandler.Get)
					testCaseGroup.PATCH("/:id", testCaseHandler.Update)
					testCaseGroup.DELETE("/:id", testCaseHandler.Delete)
				}

				// 测试计划
				planGroup := active.Group("/plans")
				{
					planGroup.GET("", planHandler.List)
					planGroup.POST("", planHandler.Create)
					planGroup.PATCH("/bulk/archive", planHandler.BulkArchive)
					planGroup.PATCH("/bulk/unarchive", planHandler.BulkUnarchive)
					planGroup.DELETE("/bulk", planHandler.BulkDelete)
					planGroup.GET("/:planId", planHandler.GetDetail)
					planGroup.PATCH("/:planId", planHandler.Update)
					planGroup.DELETE("/:planId", planHandler.Delete)
					planGroup.PATCH("/:planId/archive", planHandler.Archive)
					planGroup.PATCH("/:planId/unarchive", planHandler.Unarchive)
					planGroup.PATCH("/:planId/items/bulk", planHandler.BulkUpdateItems)
					planGroup.PATCH("/:planId/items/:itemId", planHandler.UpdateItem)
				}

				// 仪表盘
				dashboardGroup := active.Group("/dashboard")
				{
					dashboardGroup.GET("/stats", dashboardHandler.Stats)
					dashboardGroup.GET("/my-assignments", dashboardHandler.MyAssignments)
					dashboardGroup.GET("/recent-activity", dashboardHandler.RecentActivity)
					dashboardGroup.GET("/overview", dashboardHandler.Overview)
					dashboardGroup.GET("/active-plans", dashboardHandler.ActivePlans)
				}

				// 图片上传
				active.POST("/upload/image", uploadHandler.UploadImage)
			}

			// 用户管理（管理员）
			adminGroup := authed.Group("/admin")
			adminGroup.Use(middleware.RequireActive(), middleware.RequireAdmin())
			{
				adminGroup.GET("/users", adminHandler.ListUsers)
				adminGroup.POST("/users/approve", adminHandler.ApproveUser)
				adminGroup.PATCH("/users/role", adminHandler.UpdateUserRole)
				adminGroup.PATCH("/users/status", adminHandler.UpdateUserStatus)
				adminGroup.POST("/users/reset-password", adminHandler.ResetPassword)
			}
		}
	}

	return r
}
