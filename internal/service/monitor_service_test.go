package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
)

func dailyPrediction(unit string, number int, runID string) model.Prediction {
	d := day(2023, 3, 1)
	return model.Prediction{RunID: runID, Unit: unit, StartDate: d, EndDate: d, Days: 1, Number: number, Model: "xgboost"}
}

// ── Monitor 测试 ──

func TestMonitorService_Monitor_Success(t *testing.T) {
	env := newTestEnv(t)
	env.series.series["bs"] = []model.DailySeries{{Unit: "bs", Date: day(2023, 3, 1), EmployedCount: 100, DepartedCount: 5}}
	env.series.series["jm"] = []model.DailySeries{{Unit: "jm", Date: day(2023, 3, 1), EmployedCount: 100, DepartedCount: 0}}
	_ = env.prediction.Append(context.Background(), []model.Prediction{
		dailyPrediction("bs", 9, "run-1"),
		dailyPrediction("jm", 2, "run-1"),
	})
	// 同一天的第二次预测覆盖第一次
	_ = env.prediction.Append(context.Background(), []model.Prediction{dailyPrediction("bs", 3, "run-2")})

	result, err := env.monitorService().Monitor(context.Background(), day(2023, 3, 1))
	if err != nil {
		t.Fatalf("Monitor 应成功: %v", err)
	}
	if len(result.Items) != 2 || len(result.Skipped) != 0 {
		t.Fatalf("期望 2 条监控、0 条跳过，实际 %+v", result)
	}

	bs := result.Items[0]
	if bs.Unit != "bs" || bs.Predicted != 3 || bs.Actual != 5 || bs.MAE != 2 {
		t.Errorf("bs 监控不符: %+v", bs)
	}
	if math.Abs(bs.MAERate-2/(5+forecast.MAEEpsilon)) > 1e-12 {
		t.Errorf("bs mae_rate 期望 0.4，实际 %v", bs.MAERate)
	}

	jm := result.Items[1]
	if jm.MAE != 2 || jm.MAERate < 1e5 {
		t.Errorf("实际为 0 时 mae_rate 应按 ε 放大，实际 %+v", jm)
	}
	if len(env.monitor.rows) != 2 {
		t.Errorf("期望写入 2 条监控记录，实际 %d", len(env.monitor.rows))
	}
}

func TestMonitorService_Monitor_SkipsMissingData(t *testing.T) {
	env := newTestEnv(t)
	env.series.series["bs"] = []model.DailySeries{{Unit: "bs", Date: day(2023, 3, 1), DepartedCount: 1}}
	// jm 有预测但没有实际值
	_ = env.prediction.Append(context.Background(), []model.Prediction{dailyPrediction("jm", 1, "run-1")})

	result, err := env.monitorService().Monitor(context.Background(), day(2023, 3, 1))
	if err != nil {
		t.Fatalf("缺数据时不应返回错误: %v", err)
	}
	if len(result.Items) != 0 || len(result.Skipped) != 2 {
		t.Fatalf("期望全部跳过，实际 %+v", result)
	}
	if result.Skipped[0].Unit != "bs" || result.Skipped[1].Unit != "jm" {
		t.Errorf("跳过顺序应与配置一致: %+v", result.Skipped)
	}
	if len(env.monitor.rows) != 0 {
		t.Error("没有可监控单元时不应写入")
	}
}

func TestMonitorService_Monitor_IgnoresMultiDayPredictions(t *testing.T) {
	env := newTestEnv(t)
	env.series.series["bs"] = []model.DailySeries{{Unit: "bs", Date: day(2023, 3, 1), DepartedCount: 4}}
	_ = env.prediction.Append(context.Background(), []model.Prediction{{
		Unit: "bs", StartDate: day(2023, 3, 1), EndDate: day(2023, 3, 3), Days: 3, Number: 12,
	}})

	result, err := env.monitorService().Monitor(context.Background(), day(2023, 3, 1))
	if err != nil {
		t.Fatalf("Monitor 应成功: %v", err)
	}
	if len(result.Items) != 0 {
		t.Errorf("多日预测不参与单日监控，实际 %+v", result.Items)
	}
}

// ── List 测试 ──

func TestMonitorService_List_LatestPerUnit(t *testing.T) {
	env := newTestEnv(t)
	d := day(2023, 3, 1)
	_ = env.monitor.Append(context.Background(), []model.MonitorRecord{
		{Unit: "bs", Date: d, Actual: 5, Predicted: 9, MAE: 4},
		{Unit: "jm", Date: d, Actual: 1, Predicted: 1},
	})
	_ = env.monitor.Append(context.Background(), []model.MonitorRecord{
		{Unit: "bs", Date: d, Actual: 5, Predicted: 4, MAE: 1},
	})

	items, err := env.monitorService().List(context.Background(), d)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望每个单元一条，实际 %d", len(items))
	}
	if items[0].Unit != "bs" || items[0].Predicted != 4 || items[0].UnitName != "白石园区" {
		t.Errorf("bs 应取最新记录: %+v", items[0])
	}
}

func TestMonitorService_List_Empty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.monitorService().List(context.Background(), day(2023, 3, 1))
	if !errors.Is(err, ErrNoMonitorData) {
		t.Errorf("期望 ErrNoMonitorData，实际: %v", err)
	}
}
