package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/api/handler"
	"dimission-forecast/internal/api/middleware"
	"dimission-forecast/pkg/jwt"
	"dimission-forecast/pkg/metrics"
)

// 花名册上传上限
const importBodyLimit = 20 << 20

// 每个操作人每分钟最多手动触发的任务次数
const (
	jobRateLimit  = 6
	jobRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, limiter middleware.RateLimiter, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查与指标 ──
	r.GET("/health", h.System.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 查询（任意已认证操作人）
		v1.GET("/forecasts", h.Forecast.GetForecasts)
		v1.GET("/export/forecasts", h.Export.ExportForecasts)
		v1.GET("/monitor", h.Forecast.GetMonitor)

		// 管理操作
		admin := v1.Group("")
		admin.Use(middleware.RoleAuth(jwt.RoleAdmin))
		{
			jobs := admin.Group("/jobs")
			jobs.Use(middleware.RateLimit(limiter, jobRateLimit, jobRateWindow))
			{
				jobs.POST("/sync", h.Job.Sync)
				jobs.POST("/predict", h.Job.Predict)
				jobs.POST("/daily", h.Job.Daily)
				jobs.POST("/monitor", h.Job.Monitor)
			}

			admin.POST("/backtests", h.Backtest.Run)
			admin.POST("/employment/import", middleware.BodyLimit(importBodyLimit), h.Employment.Import)
		}
	}

	return r
}
