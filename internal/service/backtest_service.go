package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/repository"
)

// ── 回测模块业务错误 ──

var (
	ErrBacktestRange       = fmt.Errorf("%w: 回测结束日期早于切分日期", forecast.ErrConfig)
	ErrBacktestEmptyWindow = fmt.Errorf("%w: 训练集或测试窗口为空", forecast.ErrData)
	ErrBacktestDays        = fmt.Errorf("%w: 回测天数超出 1-%d", forecast.ErrConfig, forecast.MaxChainDays)
)

// BacktestService 扩展窗口回测业务接口
type BacktestService interface {
	Run(ctx context.Context, req *dto.BacktestRequest) (*dto.BacktestResponse, error)
}

type backtestService struct {
	cfg    *config.ForecastConfig
	repo   *repository.Repository
	rt     *Runtime
	logger *zap.Logger
}

// NewBacktestService 创建 BacktestService 实例
func NewBacktestService(cfg *config.ForecastConfig, repo *repository.Repository, rt *Runtime, logger *zap.Logger) BacktestService {
	return &backtestService{cfg: cfg, repo: repo, rt: rt, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Run — 训练集为切分日之前的全部历史，测试窗口按 days 天分块递归预测
// ═══════════════════════════════════════════════════════════

func (s *backtestService) Run(ctx context.Context, req *dto.BacktestRequest) (*dto.BacktestResponse, error) {
	if !hasUnit(s.cfg, req.Unit) {
		return nil, ErrUnknownUnit
	}
	split, err := forecast.ParseDay(req.SplitDate)
	if err != nil {
		return nil, err
	}

	end, err := s.windowEnd(ctx, req)
	if err != nil {
		return nil, err
	}
	if end.Before(split) {
		return nil, ErrBacktestRange
	}

	days := req.Days
	if days <= 0 {
		days = s.cfg.BacktestBlock
	}
	if days > forecast.MaxChainDays {
		return nil, ErrBacktestDays
	}
	family := req.Model
	if family == "" {
		if family, err = s.rt.Policy.Family(days); err != nil {
			family = forecast.FamilyLGBM
		}
	}
	factory, err := s.rt.Factory(family)
	if err != nil {
		return nil, err
	}

	series, err := s.repo.Series.ListByUnit(ctx, req.Unit, s.rt.TrainStart, end)
	if err != nil {
		s.logger.Error("查询日序列失败", zap.String("unit", req.Unit), zap.Error(err))
		return nil, err
	}
	if len(series) == 0 {
		return nil, ErrNoSeries
	}
	table, err := s.rt.Constructor.Build(toDailyRecords(series))
	if err != nil {
		return nil, err
	}

	train, test := forecast.SplitAt(table, split)
	if len(train) == 0 || len(test) == 0 {
		return nil, ErrBacktestEmptyWindow
	}

	predicted, err := s.rt.Engine.WalkForward(factory, train, test, days)
	if err != nil {
		s.logger.Warn("回测失败", zap.String("unit", req.Unit), zap.Error(err))
		return nil, err
	}

	actual := make([]float64, len(test))
	daily := make([]dto.BacktestDay, len(test))
	for i, row := range test {
		actual[i] = row.Label
		daily[i] = dto.BacktestDay{Date: formatDay(row.Date), Actual: row.Label, Predicted: predicted[i]}
	}
	eval, err := forecast.Aggregate(actual, predicted, days)
	if err != nil {
		return nil, err
	}

	s.logger.Info("回测完成",
		zap.String("unit", req.Unit),
		zap.String("model", family),
		zap.Int("days", days),
		zap.Float64("mae", eval.Metrics.MAE),
		zap.Float64("mae_rate", eval.Metrics.MAERate),
	)
	return &dto.BacktestResponse{
		Unit:       req.Unit,
		Model:      family,
		TrainSize:  len(train),
		TestSize:   len(test),
		Daily:      daily,
		Evaluation: *eval,
	}, nil
}

// windowEnd 未指定结束日期时取单元序列最后一天
func (s *backtestService) windowEnd(ctx context.Context, req *dto.BacktestRequest) (t time.Time, err error) {
	if req.EndDate != "" {
		return forecast.ParseDay(req.EndDate)
	}
	last, err := s.repo.Series.LastDate(ctx, req.Unit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, ErrNoSeries
		}
		return t, err
	}
	return forecast.Day(last), nil
}
