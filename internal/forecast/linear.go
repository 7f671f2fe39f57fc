package forecast

import (
	"github.com/sajari/regression"
	"gonum.org/v1/gonum/floats"
)

// Linear 最小二乘线性回归基线模型
// 训练前剔除零方差列（如恒为 0 的 hour），避免设计矩阵奇异
type Linear struct {
	width int
	keep  []int
	mean  float64
	model *regression.Regression
}

// NewLinear 创建未训练的线性模型
func NewLinear() *Linear { return &Linear{} }

// Fit 训练线性模型
func (m *Linear) Fit(features [][]float64, labels []float64) error {
	width, err := checkTrainingSet(features, labels)
	if err != nil {
		return err
	}

	col := make([]float64, len(features))
	var keep []int
	for j := 0; j < width; j++ {
		for i := range features {
			col[i] = features[i][j]
		}
		if floats.Max(col)-floats.Min(col) > 1e-12 {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		// 所有特征恒定时退化为标签均值
		m.width, m.keep, m.mean = width, nil, floats.Sum(labels)/float64(len(labels))
		m.model = nil
		return nil
	}
	if len(features) <= len(keep)+1 {
		return computationErrorf("样本数 %d 不足以拟合 %d 个特征", len(features), len(keep))
	}

	r := new(regression.Regression)
	r.SetObserved("departed_count")
	for k, j := range keep {
		name := "x"
		if j < len(FeatureNames) && width == len(FeatureNames) {
			name = FeatureNames[j]
		}
		r.SetVar(k, name)
	}
	for i, row := range features {
		r.Train(regression.DataPoint(labels[i], pick(row, keep)))
	}
	if err := r.Run(); err != nil {
		return computationErrorf("线性回归求解失败: %v", err)
	}

	m.width, m.keep, m.model = width, keep, r
	return nil
}

// Predict 预测单行
func (m *Linear) Predict(features []float64) (float64, error) {
	if m.width == 0 {
		return 0, computationErrorf("模型尚未训练")
	}
	if len(features) != m.width {
		return 0, computationErrorf("特征维度 %d，期望 %d", len(features), m.width)
	}
	if m.model == nil {
		return m.mean, nil
	}
	y, err := m.model.Predict(pick(features, m.keep))
	if err != nil {
		return 0, computationErrorf("线性回归预测失败: %v", err)
	}
	return y, nil
}

func pick(row []float64, keep []int) []float64 {
	out := make([]float64, len(keep))
	for k, j := range keep {
		out[k] = row[j]
	}
	return out
}
