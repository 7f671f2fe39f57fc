package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/pkg/metrics"
)

// 任务锁名称：同步与预测读写同一批数据，共用一把锁
const (
	lockDaily   = "daily"
	lockMonitor = "monitor"
)

// JobRunner 任务编排：加锁、计时、记录指标
// 定时任务与手动触发接口共用
type JobRunner interface {
	// Today 配置时区下的当天日期
	Today() time.Time
	// RunDaily 每日任务：同步后预测
	RunDaily(ctx context.Context, today time.Time) (*dto.DailyJobResult, error)
	RunSync(ctx context.Context, today time.Time) (*dto.SyncResult, error)
	RunPredict(ctx context.Context, today time.Time) (*dto.PredictResult, error)
	RunMonitor(ctx context.Context, date time.Time) (*dto.MonitorResult, error)
}

// DefaultLockTTL 任务锁默认有效期，也是单次任务的最长执行时间
const DefaultLockTTL = time.Hour

type jobRunner struct {
	sync    SyncService
	predict PredictService
	monitor MonitorService
	locker  Locker
	lockTTL time.Duration
	loc     *time.Location
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewJobRunner 创建 JobRunner 实例
func NewJobRunner(
	syncSvc SyncService,
	predictSvc PredictService,
	monitorSvc MonitorService,
	locker Locker,
	lockTTL time.Duration,
	loc *time.Location,
	m *metrics.Metrics,
	logger *zap.Logger,
) JobRunner {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &jobRunner{
		sync:    syncSvc,
		predict: predictSvc,
		monitor: monitorSvc,
		locker:  locker,
		lockTTL: lockTTL,
		loc:     loc,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (j *jobRunner) Today() time.Time {
	return forecast.Day(j.now().In(j.loc))
}

func (j *jobRunner) RunDaily(ctx context.Context, today time.Time) (*dto.DailyJobResult, error) {
	result := &dto.DailyJobResult{}
	err := j.withLock(ctx, lockDaily, "daily", func(ctx context.Context) error {
		syncRes, err := j.sync.Synchronize(ctx, today)
		result.Sync = syncRes
		if err != nil {
			return err
		}
		predRes, err := j.predict.Predict(ctx, today)
		result.Predict = predRes
		return err
	})
	return result, err
}

func (j *jobRunner) RunSync(ctx context.Context, today time.Time) (*dto.SyncResult, error) {
	var result *dto.SyncResult
	err := j.withLock(ctx, lockDaily, "sync", func(ctx context.Context) (err error) {
		result, err = j.sync.Synchronize(ctx, today)
		return err
	})
	return result, err
}

func (j *jobRunner) RunPredict(ctx context.Context, today time.Time) (*dto.PredictResult, error) {
	var result *dto.PredictResult
	err := j.withLock(ctx, lockDaily, "predict", func(ctx context.Context) (err error) {
		result, err = j.predict.Predict(ctx, today)
		return err
	})
	return result, err
}

func (j *jobRunner) RunMonitor(ctx context.Context, date time.Time) (*dto.MonitorResult, error) {
	var result *dto.MonitorResult
	err := j.withLock(ctx, lockMonitor, "monitor", func(ctx context.Context) (err error) {
		result, err = j.monitor.Monitor(ctx, date)
		return err
	})
	return result, err
}

func (j *jobRunner) withLock(ctx context.Context, lockName, job string, fn func(ctx context.Context) error) error {
	release, err := j.locker.TryLock(ctx, lockName, j.lockTTL)
	if err != nil {
		j.logger.Warn("任务未执行：获取锁失败", zap.String("job", job), zap.Error(err))
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("释放任务锁失败", zap.String("job", job), zap.Error(err))
		}
	}()

	// 任务执行时间以锁有效期为上限
	jobCtx, cancel := context.WithTimeout(ctx, j.lockTTL)
	defer cancel()

	started := time.Now()
	j.logger.Info("任务开始", zap.String("job", job))
	err = fn(jobCtx)
	j.metrics.ObserveJob(job, started, err)
	if err != nil {
		j.logger.Error("任务失败", zap.String("job", job), zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return err
	}
	j.logger.Info("任务完成", zap.String("job", job), zap.Duration("elapsed", time.Since(started)))
	return nil
}
