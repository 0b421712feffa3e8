package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
	"github.com/reyesbrostec/deceAUM/internal/api/handler"
	"github.com/reyesbrostec/deceAUM/internal/api/middleware"
	"github.com/reyesbrostec/deceAUM/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil（未启用 Redis 时写接口不限流）
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	writeLimit := middleware.RateLimit(rdb, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window, logger)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "storage": cfg.Storage.Backend, "redis": rdb != nil})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 目录模块
		catalogs := v1.Group("/catalogs")
		{
			catalogs.GET("", h.Catalog.GetCatalogs)
			catalogs.GET("/teachers/resolve", h.Catalog.ResolveTeacher)
			catalogs.GET("/subjects/normalize", h.Catalog.NormalizeSubject)
		}
		v1.GET("/schema", h.Catalog.GetSchema)

		// 考试模块
		exams := v1.Group("/exams")
		{
			exams.GET("", h.Exam.ListExams)
			exams.POST("/validate", h.Exam.ValidateExam)
			exams.POST("", writeLimit, h.Exam.CreateExam)
			exams.DELETE("", writeLimit, h.Exam.DeleteExamByIndex)
			exams.DELETE("/by-key", writeLimit, h.Exam.DeleteExamByKey)
			exams.DELETE("/:id", writeLimit, h.Exam.DeleteExam)
			exams.PUT("/:id", writeLimit, h.Exam.ReplaceExam)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("", h.Export.ExportJSON)
			export.GET("/xlsx", h.Export.ExportExcel)
			export.GET("/ics", h.Export.ExportICS)
			export.POST("/validate", h.Export.ValidateExport)
		}

		// 导入模块
		imports := v1.Group("/import")
		imports.Use(writeLimit)
		{
			imports.POST("", h.Import.ImportDocument)
			imports.POST("/ics", h.Import.ImportICS)
		}
	}

	return r
}
