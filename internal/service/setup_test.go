package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/repository"
	"dimission-forecast/pkg/metrics"
)

// ── 测试辅助 ──

type testEnv struct {
	cfg        *config.Config
	rt         *Runtime
	repo       *repository.Repository
	employment *mockEmploymentRepo
	series     *mockSeriesRepo
	prediction *mockPredictionRepo
	monitor    *mockMonitorRepo
	cache      *mockCache
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{LockTTL: 0, CacheTTL: 0},
		Forecast: config.ForecastConfig{
			TrainStartDate: "2023-01-01",
			FarFutureDate:  "2045-12-31",
			Units: []config.UnitConfig{
				{Code: "bs", Name: "白石园区"},
				{Code: "jm", Name: "精密园区"},
			},
			Horizons:         []int{1, 3, 7},
			HorizonModels:    map[int]string{1: "xgboost", 3: "lgbm", 7: "lgbm"},
			StaffCategory:    "员工",
			PayType:          "日薪",
			DepartureReasons: []string{"辞职", "辞职1", "急辞", "自离", "自离1"},
			UnitParallelism:  2,
			BacktestBlock:    1,
		},
		Scheduler: config.SchedulerConfig{Enabled: true, Timezone: "Asia/Shanghai", SyncAt: "07:10", MonitorAt: "07:50"},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	rt, err := NewRuntime(&cfg.Forecast, &cfg.Models)
	if err != nil {
		t.Fatalf("NewRuntime 应成功: %v", err)
	}
	env := &testEnv{
		cfg:        cfg,
		rt:         rt,
		employment: newMockEmploymentRepo(),
		series:     newMockSeriesRepo(),
		prediction: newMockPredictionRepo(),
		monitor:    newMockMonitorRepo(),
		cache:      newMockCache(),
		metrics:    metrics.New(prometheus.NewRegistry()),
		logger:     zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Employment: env.employment,
		Series:     env.series,
		Prediction: env.prediction,
		Monitor:    env.monitor,
	}
	return env
}

func (e *testEnv) syncService() SyncService {
	return NewSyncService(&e.cfg.Forecast, e.repo, e.rt, e.metrics, e.logger)
}

func (e *testEnv) predictService() PredictService {
	return NewPredictService(&e.cfg.Forecast, e.repo, e.rt, e.cache, e.metrics, e.logger)
}

func (e *testEnv) monitorService() MonitorService {
	return NewMonitorService(&e.cfg.Forecast, e.repo, e.metrics, e.logger)
}

func (e *testEnv) forecastService() ForecastService {
	return NewForecastService(&e.cfg.Forecast, e.repo, e.cache, 0, e.logger)
}

func (e *testEnv) backtestService() BacktestService {
	return NewBacktestService(&e.cfg.Forecast, e.repo, e.rt, e.logger)
}
