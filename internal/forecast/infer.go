package forecast

import (
	"fmt"
	"time"
)

// Horizon 一次多日预测的结果
type Horizon struct {
	Days  int
	Start time.Time
	End   time.Time
	Daily []float64    // 每天的原始预测值
	Rows  []FeatureRow // 每天实际输入模型的特征行，首行为真实行
	Sum   float64
	Value int // 四舍五入并截断为非负后的预测总数
}

// Forecast 用全部历史训练一次，从当前真实特征行出发递归预测未来 days 天并求和
func (e *Engine) Forecast(factory Factory, history []LabeledRow, current FeatureRow, days int) (*Horizon, error) {
	if days < 1 || days > MaxChainDays {
		return nil, configErrorf("预测天数超出 1-%d: %d", MaxChainDays, days)
	}

	x, y := Matrix(history)
	model := factory()
	if err := model.Fit(x, y); err != nil {
		return nil, fmt.Errorf("训练失败: %w", err)
	}

	daily, rows, err := e.chain(model, current, days)
	if err != nil {
		return nil, fmt.Errorf("递归预测失败: %w", err)
	}

	sum := 0.0
	for _, v := range daily {
		sum += v
	}
	h := &Horizon{
		Days:  days,
		Daily: daily,
		Rows:  rows,
		Sum:   sum,
		Value: int(ClampNonNegative(Round(sum))),
	}
	h.Start, h.End = h.Window(current.Date)
	return h, nil
}

// Window 以 start 为首日的预测窗口 [start, start+Days-1]
func (h *Horizon) Window(start time.Time) (time.Time, time.Time) {
	start = Day(start)
	return start, start.AddDate(0, 0, h.Days-1)
}
