// Package forecast 离职人数递归多步预测引擎：日序列构建、特征工程、
// 递归特征再生、扩展窗口回测与多日推理。包内不做 I/O，也不持有日志器。
package forecast

// Engine 递归多步预测引擎，训练/回测与线上推理共用同一条递归链
type Engine struct {
	regen *Regenerator
}

// NewEngine 创建预测引擎
func NewEngine(cal *Calendar) *Engine {
	return &Engine{regen: NewRegenerator(cal)}
}

// Regenerator 返回引擎使用的特征再生器
func (e *Engine) Regenerator() *Regenerator { return e.regen }

// chain 用真实特征行预测第一天，其余各天由上一天的（合成）行与预测值递归生成
// 中途失败时丢弃整条链
func (e *Engine) chain(model Regressor, first FeatureRow, days int) ([]float64, []FeatureRow, error) {
	preds := make([]float64, 0, days)
	rows := make([]FeatureRow, 0, days)

	row := first
	for k := 0; k < days; k++ {
		if k > 0 {
			row = e.regen.Next(row, preds[k-1])
		}
		yHat, err := model.Predict(row.Vector())
		if err != nil {
			return nil, nil, err
		}
		preds = append(preds, yHat)
		rows = append(rows, row)
	}
	return preds, rows, nil
}
