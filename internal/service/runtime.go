package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dimission-forecast/config"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
)

// Runtime 各任务共享的预测组件，构造后只读，可被多个单元并发使用
type Runtime struct {
	Calendar    *forecast.Calendar
	Constructor *forecast.Constructor
	Engine      *forecast.Engine
	Policy      forecast.HorizonPolicy
	Params      forecast.ModelParams
	TrainStart  time.Time
	FarFuture   time.Time
}

// NewRuntime 由配置构造预测组件；配置了 holiday_ics 时加载补充假期
func NewRuntime(cfg *config.ForecastConfig, models *config.ModelsConfig) (*Runtime, error) {
	trainStart, err := forecast.ParseDay(cfg.TrainStartDate)
	if err != nil {
		return nil, fmt.Errorf("forecast.train_start_date: %w", err)
	}
	farFuture, err := forecast.ParseDay(cfg.FarFutureDate)
	if err != nil {
		return nil, fmt.Errorf("forecast.far_future_date: %w", err)
	}

	var overrides map[string]bool
	if cfg.HolidayICS != "" {
		f, err := os.Open(cfg.HolidayICS)
		if err != nil {
			return nil, fmt.Errorf("%w: 打开假期日历失败: %v", forecast.ErrConfig, err)
		}
		defer f.Close()
		if overrides, err = forecast.LoadHolidayOverrides(f); err != nil {
			return nil, err
		}
	}

	policy := forecast.HorizonPolicy{}
	for days, family := range cfg.HorizonModels {
		policy[days] = family
	}
	if len(policy) == 0 {
		policy = forecast.DefaultHorizonPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	cal := forecast.NewCalendar(overrides)
	return &Runtime{
		Calendar:    cal,
		Constructor: forecast.NewConstructor(cal),
		Engine:      forecast.NewEngine(cal),
		Policy:      policy,
		Params: forecast.ModelParams{
			LGBM:    boostingParams(models.LGBM),
			XGBoost: boostingParams(models.XGBoost),
		},
		TrainStart: trainStart,
		FarFuture:  farFuture,
	}, nil
}

func boostingParams(c config.BoostingConfig) forecast.BoostingParams {
	return forecast.BoostingParams{
		Rounds:         c.Rounds,
		LearningRate:   c.LearningRate,
		MaxDepth:       c.MaxDepth,
		MaxLeaves:      c.MaxLeaves,
		MinSamplesLeaf: c.MinSamplesLeaf,
		Lambda:         c.Lambda,
		MaxBins:        c.MaxBins,
	}
}

// Factory 按模型族名称创建模型工厂
func (r *Runtime) Factory(family string) (forecast.Factory, error) {
	return forecast.NewFactory(family, r.Params)
}

// ── 模型与引擎之间的转换 ──

func toDailyRecords(rows []model.DailySeries) []forecast.DailyRecord {
	out := make([]forecast.DailyRecord, len(rows))
	for i, r := range rows {
		out[i] = forecast.DailyRecord{
			Date:          forecast.Day(r.Date),
			EmployedCount: r.EmployedCount,
			DepartedCount: r.DepartedCount,
		}
	}
	return out
}

func toSeriesRows(unit string, records []forecast.DailyRecord) []model.DailySeries {
	out := make([]model.DailySeries, len(records))
	for i, r := range records {
		out[i] = model.DailySeries{
			Unit:          unit,
			Date:          r.Date,
			EmployedCount: r.EmployedCount,
			DepartedCount: r.DepartedCount,
		}
	}
	return out
}

// ── 单元并发 ──

// forEachUnit 按配置的并发度处理各单元，结果按 units 顺序返回
// fn 返回的错误只影响该单元；ctx 取消后尚未开始的单元记为 ctx.Err()
func forEachUnit[T any](ctx context.Context, units []string, parallelism int, fn func(ctx context.Context, unit string) (T, error)) ([]T, []error) {
	if parallelism < 1 {
		parallelism = 1
	}
	results := make([]T, len(units))
	errs := make([]error, len(units))

	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = fn(ctx, unit)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
