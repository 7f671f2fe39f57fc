package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
	"dimission-forecast/internal/repository"
	"dimission-forecast/pkg/metrics"
)

// ── 预测模块业务错误 ──

var (
	ErrNoCurrentRow = fmt.Errorf("%w: 日序列缺少预测起始日", forecast.ErrData)
	ErrNoHistory    = fmt.Errorf("%w: 预测起始日之前无训练数据", forecast.ErrData)
)

// PredictService 多日预测业务接口
type PredictService interface {
	// Predict 以 today 为起始日，为每个单元、每个预测天数生成一条预测并追加写入
	// 单元内任一预测天数失败时整个单元跳过，不写入部分结果
	Predict(ctx context.Context, today time.Time) (*dto.PredictResult, error)
}

type predictService struct {
	cfg     *config.ForecastConfig
	repo    *repository.Repository
	rt      *Runtime
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPredictService 创建 PredictService 实例
func NewPredictService(cfg *config.ForecastConfig, repo *repository.Repository, rt *Runtime, cache Cache, m *metrics.Metrics, logger *zap.Logger) PredictService {
	return &predictService{cfg: cfg, repo: repo, rt: rt, cache: cache, metrics: m, logger: logger}
}

func (s *predictService) Predict(ctx context.Context, today time.Time) (*dto.PredictResult, error) {
	today = forecast.Day(today)
	units := s.cfg.UnitCodes()

	preds, errs := forEachUnit(ctx, units, s.cfg.UnitParallelism, func(ctx context.Context, unit string) ([]model.Prediction, error) {
		return s.predictUnit(ctx, unit, today)
	})

	runID := uuid.NewString()
	result := &dto.PredictResult{Date: formatDay(today), RunID: runID}
	var rows []model.Prediction
	for i, unit := range units {
		result.Units = append(result.Units, unitResult(unit, len(preds[i]), errs[i]))
		if errs[i] != nil {
			recordUnitFailure(s.metrics, "predict", unit, errs[i])
			s.logger.Warn("单元预测失败，已跳过",
				zap.String("unit", unit),
				zap.String("kind", forecast.ErrorKind(errs[i])),
				zap.Error(errs[i]),
			)
			continue
		}
		for _, p := range preds[i] {
			p.RunID = runID
			rows = append(rows, p)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(rows) == 0 {
		return result, ErrAllUnitsFailed
	}

	if err := s.repo.Prediction.Append(ctx, rows); err != nil {
		s.logger.Error("写入预测结果失败", zap.Error(err))
		return nil, err
	}

	for _, p := range rows {
		s.metrics.Forecast.WithLabelValues(p.Unit, strconv.Itoa(p.Days)).Set(float64(p.Number))
		result.Items = append(result.Items, toForecastItem(s.cfg, p))
	}
	if s.cache != nil {
		if err := s.cache.DeleteCache(ctx, forecastCacheKey(today)); err != nil {
			s.logger.Warn("清理预测缓存失败", zap.Error(err))
		}
	}

	s.logger.Info("预测完成",
		zap.String("date", result.Date),
		zap.String("run_id", runID),
		zap.Int("records", len(rows)),
	)
	return result, nil
}

func (s *predictService) predictUnit(ctx context.Context, unit string, today time.Time) ([]model.Prediction, error) {
	series, err := s.repo.Series.ListByUnit(ctx, unit, s.rt.TrainStart, today)
	if err != nil {
		return nil, fmt.Errorf("查询日序列失败: %w", err)
	}
	if len(series) == 0 {
		return nil, ErrNoSeries
	}

	table, err := s.rt.Constructor.Build(toDailyRecords(series))
	if err != nil {
		return nil, err
	}
	history, rest := forecast.SplitAt(table, today)
	if len(rest) == 0 || !rest[0].Date.Equal(today) {
		return nil, ErrNoCurrentRow
	}
	if len(history) == 0 {
		return nil, ErrNoHistory
	}

	horizons := append([]int(nil), s.cfg.Horizons...)
	sort.Ints(horizons)

	out := make([]model.Prediction, 0, len(horizons))
	for _, days := range horizons {
		family, err := s.rt.Policy.Family(days)
		if err != nil {
			return nil, err
		}
		factory, err := s.rt.Factory(family)
		if err != nil {
			return nil, err
		}
		h, err := s.rt.Engine.Forecast(factory, history, rest[0].FeatureRow, days)
		if err != nil {
			return nil, fmt.Errorf("%d 天预测失败: %w", days, err)
		}
		s.logger.Debug("单元预测",
			zap.String("unit", unit),
			zap.Int("days", days),
			zap.String("model", family),
			zap.Float64s("daily", h.Daily),
			zap.Int("number", h.Value),
		)
		out = append(out, model.Prediction{
			Unit:      unit,
			StartDate: h.Start,
			EndDate:   h.End,
			Days:      days,
			Number:    h.Value,
			RawSum:    h.Sum,
			Model:     family,
		})
	}
	return out, nil
}

func toForecastItem(cfg *config.ForecastConfig, p model.Prediction) dto.ForecastItem {
	return dto.ForecastItem{
		Unit:      p.Unit,
		UnitName:  cfg.UnitName(p.Unit),
		StartDate: formatDay(p.StartDate),
		EndDate:   formatDay(p.EndDate),
		Days:      p.Days,
		Number:    p.Number,
		Model:     p.Model,
		RunID:     p.RunID,
	}
}

func forecastCacheKey(date time.Time) string {
	return "forecasts:" + formatDay(date)
}
