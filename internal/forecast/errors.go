package forecast

import (
	"errors"
	"fmt"
)

// ── 预测引擎错误分类 ──
//
// 调用方使用 errors.Is 判断错误类别：
//   - ErrData:        输入记录格式错误或不一致（日期无法解析、序列有空洞）
//   - ErrComputation: 特征推导或模型拟合/预测失败
//   - ErrConfig:      非法的预测天数或模型类型
var (
	ErrData        = errors.New("数据错误")
	ErrComputation = errors.New("计算错误")
	ErrConfig      = errors.New("配置错误")
)

func dataErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrData, fmt.Sprintf(format, args...))
}

func computationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrComputation, fmt.Sprintf(format, args...))
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// ErrorKind 返回错误类别名称，用于日志与监控指标标签
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrData):
		return "data"
	case errors.Is(err, ErrComputation):
		return "computation"
	case errors.Is(err, ErrConfig):
		return "config"
	default:
		return "unknown"
	}
}
