package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/api/handler"
	"dimission-forecast/internal/api/middleware"
	"dimission-forecast/internal/api/router"
	"dimission-forecast/internal/repository"
	"dimission-forecast/internal/scheduler"
	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/database"
	"dimission-forecast/pkg/jwt"
	applogger "dimission-forecast/pkg/logger"
	"dimission-forecast/pkg/metrics"
	"dimission-forecast/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，缺省时查找 ./config/config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Strings("units", cfg.Forecast.UnitCodes()),
		zap.Ints("horizons", cfg.Forecast.Horizons),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：未配置或连接失败时使用进程内锁、不缓存、不限流）
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		if rdb, err = redis.NewClient(&cfg.Redis, logger); err != nil {
			logger.Warn("Redis 连接失败，降级为单实例运行", zap.Error(err))
			rdb = nil
		}
	}

	// 5. 预测组件与指标
	rt, err := service.NewRuntime(&cfg.Forecast, &cfg.Models)
	if err != nil {
		logger.Fatal("初始化预测组件失败", zap.Error(err))
	}
	m := metrics.New(nil)

	// 6. 依赖注入: Repository → Service → Handler
	deps := service.Deps{
		Config:  cfg,
		Repo:    repository.NewRepository(db),
		Runtime: rt,
		Metrics: m,
		Logger:  logger,
	}
	checks := map[string]handler.HealthCheck{"database": sqlDB.PingContext}
	var limiter middleware.RateLimiter
	if rdb != nil {
		deps.Cache, deps.Locker, limiter = rdb, rdb, rdb
		checks["redis"] = rdb.Ping
	}
	svc, err := service.NewService(deps)
	if err != nil {
		logger.Fatal("初始化业务服务失败", zap.Error(err))
	}
	h := handler.NewHandler(cfg, svc, checks)

	// 7. 定时任务
	sched, err := scheduler.New(&cfg.Scheduler, svc.Jobs, logger)
	if err != nil {
		logger.Fatal("初始化定时任务失败", zap.Error(err))
	}
	if sched != nil {
		sched.Start()
	}

	// 8. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, jwt.NewManager(&cfg.Auth), limiter, m, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	// 手动任务与回测可能耗时较长，写超时放宽
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	_ = sqlDB.Close()
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
