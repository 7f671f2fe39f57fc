package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MAEEpsilon 相对误差分母的平滑项
const MAEEpsilon = 1e-5

// Round 四舍五入到整数（半数取偶，与历史回测口径一致）
func Round(x float64) float64 { return math.RoundToEven(x) }

// ClampNonNegative 负数截断为 0
func ClampNonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// Metrics 回归误差指标
type Metrics struct {
	N       int     `json:"n"`
	MAE     float64 `json:"mae"`
	RMSE    float64 `json:"rmse"`
	MAERate float64 `json:"mae_rate"` // MAE / (mean(actual) + ε)
}

// Evaluation 按预测块聚合后的实际值、预测值与误差
type Evaluation struct {
	BlockSize int       `json:"block_size"`
	Actual    []float64 `json:"actual"`
	Predicted []float64 `json:"predicted"`
	Metrics   Metrics   `json:"metrics"`
}

// Aggregate 把逐日实际值与预测值按 blockSize 天分窗求和并计算误差
//
// 实际值：滑动求和后按步长抽样；预测值：直接分块求和。
// 长度不能被 blockSize 整除且 blockSize != 1 时，尾部不足一块的部分单独求和追加。
// 预测和四舍五入，所有和截断为非负。
func Aggregate(actual, predicted []float64, blockSize int) (*Evaluation, error) {
	if blockSize < 1 {
		return nil, configErrorf("预测块天数必须为正数: %d", blockSize)
	}
	if len(actual) != len(predicted) {
		return nil, dataErrorf("实际值长度 %d 与预测值长度 %d 不一致", len(actual), len(predicted))
	}

	act := strideSums(actual, blockSize)
	pred := BlockSums(predicted, blockSize)
	for i := range pred {
		pred[i] = ClampNonNegative(Round(pred[i]))
	}
	for i := range act {
		act[i] = ClampNonNegative(act[i])
	}

	m, err := ComputeMetrics(act, pred)
	if err != nil {
		return nil, err
	}
	return &Evaluation{BlockSize: blockSize, Actual: act, Predicted: pred, Metrics: m}, nil
}

// BlockSums 按 size 天分块求和，尾部不足一块的部分单独成块
func BlockSums(values []float64, size int) []float64 {
	out := make([]float64, 0, (len(values)+size-1)/size)
	for i := 0; i < len(values); i += size {
		end := i + size
		if end > len(values) {
			end = len(values)
		}
		sum := 0.0
		for _, v := range values[i:end] {
			sum += v
		}
		out = append(out, sum)
	}
	return out
}

// strideSums 窗口为 size 的滑动和，从第 size-1 个位置起每 size 个取一次，
// 再追加尾部不足一块的部分和
func strideSums(values []float64, size int) []float64 {
	rolling := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= size {
			sum -= values[i-size]
		}
		rolling[i] = sum
	}

	out := make([]float64, 0, (len(values)+size-1)/size)
	for i := size - 1; i < len(values); i += size {
		out = append(out, rolling[i])
	}
	if rem := len(values) % size; rem != 0 && size != 1 {
		tail := 0.0
		for _, v := range values[len(values)-rem:] {
			tail += v
		}
		out = append(out, tail)
	}
	return out
}

// ComputeMetrics 计算 MAE、RMSE 与相对 MAE
func ComputeMetrics(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, dataErrorf("实际值长度 %d 与预测值长度 %d 不一致", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return Metrics{}, dataErrorf("评估序列为空")
	}

	absErr := make([]float64, len(actual))
	sqErr := make([]float64, len(actual))
	for i := range actual {
		d := actual[i] - predicted[i]
		absErr[i] = math.Abs(d)
		sqErr[i] = d * d
	}
	mae := stat.Mean(absErr, nil)
	return Metrics{
		N:       len(actual),
		MAE:     mae,
		RMSE:    math.Sqrt(stat.Mean(sqErr, nil)),
		MAERate: mae / (stat.Mean(actual, nil) + MAEEpsilon),
	}, nil
}
