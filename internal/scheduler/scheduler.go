package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/service"
)

// 单次定时任务的最长执行时间，不超过任务锁有效期
const jobTimeout = service.DefaultLockTTL

// Scheduler 每日定时任务
//
//   - sync_at：同步日序列并预测当天起的各预测天数
//   - monitor_at：对比昨天的单日预测与实际离职人数
type Scheduler struct {
	cron   *gocron.Scheduler
	jobs   service.JobRunner
	cfg    *config.SchedulerConfig
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建调度器并注册任务，未启用时返回 nil
func New(cfg *config.SchedulerConfig, jobs service.JobRunner, logger *zap.Logger) (*Scheduler, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("加载调度时区失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   gocron.NewScheduler(loc),
		jobs:   jobs,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	// 上一次未结束时跳过本次触发
	s.cron.SingletonModeAll()

	if _, err := s.cron.Every(1).Day().At(cfg.SyncAt).Tag("daily").Do(s.runDaily); err != nil {
		cancel()
		return nil, fmt.Errorf("注册每日预测任务失败: %w", err)
	}
	if _, err := s.cron.Every(1).Day().At(cfg.MonitorAt).Tag("monitor").Do(s.runMonitor); err != nil {
		cancel()
		return nil, fmt.Errorf("注册监控任务失败: %w", err)
	}
	return s, nil
}

// Start 异步启动调度
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	for _, job := range s.cron.Jobs() {
		s.logger.Info("定时任务已注册",
			zap.Strings("tags", job.Tags()),
			zap.Time("next_run", job.NextRun()),
		)
	}
}

// Stop 停止调度并取消正在执行的任务
func (s *Scheduler) Stop() {
	s.cancel()
	s.cron.Stop()
	s.logger.Info("定时任务已停止")
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	today := s.jobs.Today()
	if _, err := s.jobs.RunDaily(ctx, today); err != nil {
		s.logger.Error("定时预测任务失败", zap.String("date", today.Format("2006-01-02")), zap.Error(err))
	}
}

func (s *Scheduler) runMonitor() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	yesterday := s.jobs.Today().AddDate(0, 0, -1)
	if _, err := s.jobs.RunMonitor(ctx, yesterday); err != nil {
		s.logger.Error("定时监控任务失败", zap.String("date", yesterday.Format("2006-01-02")), zap.Error(err))
	}
}
