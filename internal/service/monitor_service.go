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
	"dimission-forecast/internal/model"
	"dimission-forecast/internal/repository"
	"dimission-forecast/pkg/metrics"
)

// ── 监控模块业务错误 ──

var (
	ErrNoDailyForecast = fmt.Errorf("%w: 无单日预测", forecast.ErrData)
	ErrNoActual        = fmt.Errorf("%w: 无实际离职人数", forecast.ErrData)
	ErrNoMonitorData   = errors.New("该日期暂无监控数据")
)

// MonitorService 预测监控业务接口
type MonitorService interface {
	// Monitor 对比 date 当天的单日预测与实际离职人数并追加写入监控记录
	Monitor(ctx context.Context, date time.Time) (*dto.MonitorResult, error)
	// List 查询 date 的监控记录，每个单元取最新一条
	List(ctx context.Context, date time.Time) ([]dto.MonitorItem, error)
}

type monitorService struct {
	cfg     *config.ForecastConfig
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMonitorService 创建 MonitorService 实例
func NewMonitorService(cfg *config.ForecastConfig, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) MonitorService {
	return &monitorService{cfg: cfg, repo: repo, metrics: m, logger: logger}
}

func (s *monitorService) Monitor(ctx context.Context, date time.Time) (*dto.MonitorResult, error) {
	date = forecast.Day(date)

	preds, err := s.repo.Prediction.ListDaily(ctx, date)
	if err != nil {
		s.logger.Error("查询单日预测失败", zap.Error(err))
		return nil, err
	}
	// 同一天可能有多次预测，取最新一次
	latest := make(map[string]model.Prediction, len(preds))
	for _, p := range preds {
		if _, ok := latest[p.Unit]; !ok {
			latest[p.Unit] = p
		}
	}

	result := &dto.MonitorResult{Date: formatDay(date)}
	var records []model.MonitorRecord
	for _, unit := range s.cfg.UnitCodes() {
		rec, err := s.monitorUnit(ctx, unit, date, latest)
		if err != nil {
			result.Skipped = append(result.Skipped, unitResult(unit, 0, err))
			if !errors.Is(err, forecast.ErrData) {
				recordUnitFailure(s.metrics, "monitor", unit, err)
			}
			s.logger.Info("单元监控跳过", zap.String("unit", unit), zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}

	if len(records) == 0 {
		return result, nil
	}
	if err := s.repo.Monitor.Append(ctx, records); err != nil {
		s.logger.Error("写入监控数据失败", zap.Error(err))
		return nil, err
	}
	for _, r := range records {
		s.metrics.MonitorMAE.WithLabelValues(r.Unit).Set(r.MAE)
		result.Items = append(result.Items, s.toMonitorItem(r))
	}

	s.logger.Info("监控完成", zap.String("date", result.Date), zap.Int("units", len(records)))
	return result, nil
}

func (s *monitorService) monitorUnit(ctx context.Context, unit string, date time.Time, latest map[string]model.Prediction) (*model.MonitorRecord, error) {
	p, ok := latest[unit]
	if !ok {
		return nil, ErrNoDailyForecast
	}
	actual, err := s.repo.Series.GetByUnitDate(ctx, unit, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActual
		}
		return nil, err
	}

	m, err := forecast.ComputeMetrics([]float64{float64(actual.DepartedCount)}, []float64{float64(p.Number)})
	if err != nil {
		return nil, err
	}
	return &model.MonitorRecord{
		Unit:      unit,
		Date:      date,
		Actual:    actual.DepartedCount,
		Predicted: p.Number,
		MAE:       m.MAE,
		MAERate:   m.MAERate,
	}, nil
}

func (s *monitorService) List(ctx context.Context, date time.Time) ([]dto.MonitorItem, error) {
	rows, err := s.repo.Monitor.ListByDate(ctx, forecast.Day(date))
	if err != nil {
		s.logger.Error("查询监控数据失败", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	items := make([]dto.MonitorItem, 0, len(rows))
	for _, r := range rows {
		if seen[r.Unit] {
			continue
		}
		seen[r.Unit] = true
		items = append(items, s.toMonitorItem(r))
	}
	if len(items) == 0 {
		return nil, ErrNoMonitorData
	}
	return items, nil
}

func (s *monitorService) toMonitorItem(r model.MonitorRecord) dto.MonitorItem {
	return dto.MonitorItem{
		Unit:      r.Unit,
		UnitName:  s.cfg.UnitName(r.Unit),
		Date:      formatDay(r.Date),
		Actual:    r.Actual,
		Predicted: r.Predicted,
		MAE:       r.MAE,
		MAERate:   r.MAERate,
	}
}
