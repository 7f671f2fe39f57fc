package forecast

import "fmt"

// Block 回测窗口中的一个预测块 [Offset, Offset+Size)
type Block struct {
	Offset int
	Size   int
}

// Blocks 把长度为 n 的测试窗口切成连续的 size 天预测块，最后一块可能更短
func Blocks(n, size int) ([]Block, error) {
	if size < 1 {
		return nil, configErrorf("预测块天数必须为正数: %d", size)
	}
	blocks := make([]Block, 0, (n+size-1)/size)
	for i := 0; i < n; i += size {
		s := size
		if n-i < s {
			s = n - i
		}
		blocks = append(blocks, Block{Offset: i, Size: s})
	}
	return blocks, nil
}

// WalkForward 扩展窗口逐块回测
//
// 每个块在 offset i 处：
//  1. 用 train ∪ test[:i] 训练一个全新模型（看不到本块及之后的标签）
//  2. 第 i 天用真实特征行预测
//  3. 块内其余各天由再生器基于上一天的行与预测值合成特征后预测
//
// 输出与 test 等长、按日期排序。任一块训练或预测失败则整个回测失败。
func (e *Engine) WalkForward(factory Factory, train, test []LabeledRow, blockSize int) ([]float64, error) {
	if blockSize > MaxChainDays {
		return nil, configErrorf("回测块长超出 1-%d: %d", MaxChainDays, blockSize)
	}
	blocks, err := Blocks(len(test), blockSize)
	if err != nil {
		return nil, err
	}

	xTrain, yTrain := Matrix(train)
	xTest, yTest := Matrix(test)

	out := make([]float64, 0, len(test))
	for _, blk := range blocks {
		x := make([][]float64, 0, len(xTrain)+blk.Offset)
		x = append(append(x, xTrain...), xTest[:blk.Offset]...)
		y := make([]float64, 0, len(yTrain)+blk.Offset)
		y = append(append(y, yTrain...), yTest[:blk.Offset]...)

		model := factory()
		if err := model.Fit(x, y); err != nil {
			return nil, fmt.Errorf("回测块 %d 训练失败: %w", blk.Offset, err)
		}

		preds, _, err := e.chain(model, test[blk.Offset].FeatureRow, blk.Size)
		if err != nil {
			return nil, fmt.Errorf("回测块 %d 预测失败: %w", blk.Offset, err)
		}
		out = append(out, preds...)
	}
	return out, nil
}
