package forecast

import (
	"math"
	"sort"
	"strings"
)

// Regressor 单步表格回归模型
type Regressor interface {
	Fit(features [][]float64, labels []float64) error
	Predict(features []float64) (float64, error)
}

// Factory 每次调用返回一个未训练的新模型实例
type Factory func() Regressor

// 模型族
const (
	FamilyLGBM    = "lgbm"
	FamilyXGBoost = "xgboost"
	FamilyLinear  = "linear"
)

// ModelParams 各模型族的超参数，零值字段使用默认值
type ModelParams struct {
	LGBM    BoostingParams
	XGBoost BoostingParams
}

// NewFactory 按模型族创建模型工厂
func NewFactory(family string, params ModelParams) (Factory, error) {
	switch strings.ToLower(family) {
	case FamilyLGBM:
		p := params.LGBM.withDefaults(DefaultLGBMParams())
		return func() Regressor { return NewGradientBoosting(p) }, nil
	case FamilyXGBoost:
		p := params.XGBoost.withDefaults(DefaultXGBoostParams())
		return func() Regressor { return NewGradientBoosting(p) }, nil
	case FamilyLinear:
		return func() Regressor { return NewLinear() }, nil
	default:
		return nil, configErrorf("未知模型类型 %q", family)
	}
}

// HorizonPolicy 预测天数 → 模型族的映射表
type HorizonPolicy map[int]string

// DefaultHorizonPolicy 1 天用 xgboost，3/7 天用 lgbm
func DefaultHorizonPolicy() HorizonPolicy {
	return HorizonPolicy{1: FamilyXGBoost, 3: FamilyLGBM, 7: FamilyLGBM}
}

// Family 返回预测天数对应的模型族
func (p HorizonPolicy) Family(days int) (string, error) {
	if days < 1 {
		return "", configErrorf("预测天数必须为正数: %d", days)
	}
	family, ok := p[days]
	if !ok {
		return "", configErrorf("未配置 %d 天预测的模型", days)
	}
	return family, nil
}

// Validate 校验映射中每个模型族均可识别
func (p HorizonPolicy) Validate() error {
	days := make([]int, 0, len(p))
	for d := range p {
		days = append(days, d)
	}
	sort.Ints(days)
	for _, d := range days {
		if d < 1 {
			return configErrorf("预测天数必须为正数: %d", d)
		}
		if _, err := NewFactory(p[d], ModelParams{}); err != nil {
			return err
		}
	}
	return nil
}

// checkTrainingSet 校验训练集矩形且数值有限，返回特征维度
func checkTrainingSet(features [][]float64, labels []float64) (int, error) {
	if len(features) == 0 {
		return 0, computationErrorf("训练集为空")
	}
	if len(features) != len(labels) {
		return 0, computationErrorf("特征行数 %d 与标签数 %d 不一致", len(features), len(labels))
	}
	width := len(features[0])
	if width == 0 {
		return 0, computationErrorf("特征维度为 0")
	}
	for i, row := range features {
		if len(row) != width {
			return 0, computationErrorf("第 %d 行特征维度 %d，期望 %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, computationErrorf("第 %d 行第 %d 列特征非有限值", i, j)
			}
		}
		if math.IsNaN(labels[i]) || math.IsInf(labels[i], 0) {
			return 0, computationErrorf("第 %d 行标签非有限值", i)
		}
	}
	return width, nil
}
