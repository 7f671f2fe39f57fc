package forecast

// MaxChainDays 递归链最长天数。再生器不计预测期内入职，在职人数只减不增，
// 超过一周的链需要先引入入职率项
const MaxChainDays = 7

// Regenerator 递归特征再生器
//
// 给定第 t 天的特征行与模型对第 t 天离职人数的预测值，
// 合成第 t+1 天的特征行。多日预测链中每多预测一天调用一次。
type Regenerator struct {
	cal *Calendar
}

// NewRegenerator 创建再生器，cal 必须与构造特征表时使用的日历一致
func NewRegenerator(cal *Calendar) *Regenerator {
	if cal == nil {
		cal = NewCalendar(nil)
	}
	return &Regenerator{cal: cal}
}

// Next 合成下一天的特征行
//
//   - 日期 +1 天
//   - 前一天离职人数 = yHat
//   - 前一天在职人数 = 当前前一天在职人数 - yHat（不计预测期内入职）
//   - 离职人数比重新计算
//   - 农历、节假日、时间索引特征全部按新日期重新推导，不沿用
func (g *Regenerator) Next(row FeatureRow, yHat float64) FeatureRow {
	next := FeatureRow{
		PrevDepartedCount: yHat,
		PrevEmployedCount: row.PrevEmployedCount - yHat,
	}
	next.DepartureRatio = Ratio(next.PrevDepartedCount, next.PrevEmployedCount)
	return next.withDate(g.cal, row.Date.AddDate(0, 0, 1))
}
