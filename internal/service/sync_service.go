package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
	"dimission-forecast/internal/repository"
	"dimission-forecast/pkg/metrics"
)

// SyncService 日序列同步业务接口
type SyncService interface {
	// Synchronize 为每个单元重建 [train_start_date, today] 的日序列并整体替换
	Synchronize(ctx context.Context, today time.Time) (*dto.SyncResult, error)
}

type syncService struct {
	cfg     *config.ForecastConfig
	repo    *repository.Repository
	rt      *Runtime
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSyncService 创建 SyncService 实例
func NewSyncService(cfg *config.ForecastConfig, repo *repository.Repository, rt *Runtime, m *metrics.Metrics, logger *zap.Logger) SyncService {
	return &syncService{cfg: cfg, repo: repo, rt: rt, metrics: m, logger: logger}
}

func (s *syncService) Synchronize(ctx context.Context, today time.Time) (*dto.SyncResult, error) {
	today = forecast.Day(today)
	if today.Before(s.rt.TrainStart) {
		return nil, fmt.Errorf("%w: 同步日期 %s 早于训练起始日 %s",
			forecast.ErrConfig, formatDay(today), formatDay(s.rt.TrainStart))
	}

	units := s.cfg.UnitCodes()
	counts, errs := forEachUnit(ctx, units, s.cfg.UnitParallelism, func(ctx context.Context, unit string) (int, error) {
		return s.syncUnit(ctx, unit, today)
	})

	result := &dto.SyncResult{Date: formatDay(today)}
	failed := 0
	for i, unit := range units {
		result.Units = append(result.Units, unitResult(unit, counts[i], errs[i]))
		if errs[i] != nil {
			failed++
			recordUnitFailure(s.metrics, "sync", unit, errs[i])
			s.logger.Warn("单元同步失败，已跳过",
				zap.String("unit", unit),
				zap.String("kind", forecast.ErrorKind(errs[i])),
				zap.Error(errs[i]),
			)
			continue
		}
		s.logger.Info("单元同步完成", zap.String("unit", unit), zap.Int("days", counts[i]))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(units) > 0 && failed == len(units) {
		return result, ErrAllUnitsFailed
	}
	return result, nil
}

func (s *syncService) syncUnit(ctx context.Context, unit string, today time.Time) (int, error) {
	employedRows, err := s.repo.Employment.ListEmployed(ctx, unit, s.cfg.StaffCategory, s.cfg.PayType)
	if err != nil {
		return 0, fmt.Errorf("查询在职人员失败: %w", err)
	}
	departedRows, err := s.repo.Employment.ListDeparted(ctx, unit, s.cfg.StaffCategory, s.cfg.DepartureReasons, s.rt.TrainStart, today)
	if err != nil {
		return 0, fmt.Errorf("查询离职人员失败: %w", err)
	}

	employed := make([]forecast.EmploymentRecord, 0, len(employedRows))
	for _, r := range employedRows {
		employed = append(employed, forecast.EmploymentRecord{
			JoinDate:      forecast.Day(r.JoinDate),
			DepartureDate: s.rt.FarFuture,
		})
	}
	departed := make([]forecast.EmploymentRecord, 0, len(departedRows))
	for _, r := range departedRows {
		rec, err := departedRecord(r)
		if err != nil {
			return 0, err
		}
		departed = append(departed, rec)
	}

	series, err := forecast.BuildDailySeries(employed, departed, s.rt.TrainStart, today)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Series.ReplaceUnit(ctx, unit, toSeriesRows(unit, series)); err != nil {
		return 0, fmt.Errorf("写入日序列失败: %w", err)
	}
	return len(series), nil
}

func departedRecord(r model.EmploymentRecord) (forecast.EmploymentRecord, error) {
	if r.DepartureDate == nil {
		return forecast.EmploymentRecord{}, fmt.Errorf("%w: 离职记录 %d 缺少离职日期", forecast.ErrData, r.RecordID)
	}
	return forecast.EmploymentRecord{
		JoinDate:      forecast.Day(r.JoinDate),
		DepartureDate: forecast.Day(*r.DepartureDate),
	}, nil
}
