package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spinoza1124/emotion-labeling-refactoring/config"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/api/handler"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/api/middleware"
	"github.com/Spinoza1124/emotion-labeling-refactoring/internal/model"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/jwt"
	"github.com/Spinoza1124/emotion-labeling-refactoring/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 分组分配模块
			assignment := authorized.Group("/assignment")
			{
				assignment.GET("", h.Assignment.GetAssignment)
				assignment.GET("/candidate", h.Assignment.GetCandidate)
				assignment.POST("/commit", h.Assignment.Commit)
				assignment.POST("/acquire", h.Assignment.Acquire)
				assignment.GET("/progress", h.Assignment.GetProgress)
				assignment.PUT("/progress", h.Assignment.UpdateProgress)
			}

			// 标注模块
			authorized.GET("/speakers", h.Annotation.ListSpeakers)
			authorized.GET("/speakers/:speaker/audios", h.Annotation.ListAudios)
			labels := authorized.Group("/labels")
			{
				labels.POST("", h.Annotation.SaveLabel)
				labels.GET("", h.Annotation.GetLabel)
				labels.POST("/play-count", h.Annotation.IncrementPlayCount)
				labels.GET("/play-count", h.Annotation.GetPlayCount)
			}

			// 管理模块（仅 admin）
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth(model.RoleAdmin))
			{
				admin.POST("/catalog/import", h.Admin.ImportCatalog)
				admin.GET("/groups", h.Admin.ListGroups)
				admin.GET("/groups/:id", h.Admin.GetGroup)
				admin.GET("/users", h.Admin.ListUsers)
				admin.POST("/users/reset", h.Admin.ResetUser)
				admin.GET("/users/:username/order-stats", h.Admin.GetOrderStats)
				admin.GET("/export", h.Export.ExportLabels)
			}
		}
	}

	return r
}
