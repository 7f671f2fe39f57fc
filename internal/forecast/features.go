package forecast

import (
	"math"
	"time"
)

// FeatureRow 某一天的模型输入特征
//
// 滞后特征取前一天的 DailyRecord；区间首行用当天自身的值填充。
// DepartureRatio 在 PrevEmployedCount 为 0 时为 NaN/Inf，由 Vector 兜底。
type FeatureRow struct {
	Date time.Time

	PrevEmployedCount float64
	PrevDepartedCount float64
	DepartureRatio    float64

	LunarYear        int
	LunarMonth       int
	LunarDay         int
	IsHoliday        int
	IsSpringFestival int

	TimeIndex
}

// TimeIndex 通用时间索引特征
type TimeIndex struct {
	Hour       int
	DayOfWeek  int // 周一 = 0
	Quarter    int
	Month      int
	Year       int
	DayOfYear  int
	SinDay     float64
	CosDay     float64
	DayOfMonth int
	WeekOfYear int // ISO 周
}

// FeatureNames 模型输入列顺序，与 Vector 一一对应
var FeatureNames = []string{
	"lunar_year", "lunar_month", "lunar_day",
	"prev_employed_count", "prev_departed_count", "departure_ratio",
	"is_holiday", "is_spring_festival",
	"hour", "dayofweek", "quarter", "month", "year", "dayofyear",
	"sin_day", "cos_day", "dayofmonth", "weekofyear",
}

// NewTimeIndex 由日期计算时间索引特征
// sin/cos 直接作用于年内序号（弧度），保持与历史回测一致
func NewTimeIndex(date time.Time) TimeIndex {
	date = Day(date)
	_, week := date.ISOWeek()
	doy := date.YearDay()
	return TimeIndex{
		Hour:       date.Hour(),
		DayOfWeek:  (int(date.Weekday()) + 6) % 7,
		Quarter:    (int(date.Month())-1)/3 + 1,
		Month:      int(date.Month()),
		Year:       date.Year(),
		DayOfYear:  doy,
		SinDay:     math.Sin(float64(doy)),
		CosDay:     math.Cos(float64(doy)),
		DayOfMonth: date.Day(),
		WeekOfYear: week,
	}
}

// Ratio 计算离职人数比，分母为 0 时返回 NaN 或 ±Inf
func Ratio(prevDeparted, prevEmployed float64) float64 {
	return prevDeparted / prevEmployed
}

// Vector 按 FeatureNames 顺序输出特征向量
// 非有限的离职人数比（前一天在职人数为 0）按 0 输入模型
func (r FeatureRow) Vector() []float64 {
	ratio := r.DepartureRatio
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = 0
	}
	return []float64{
		float64(r.LunarYear), float64(r.LunarMonth), float64(r.LunarDay),
		r.PrevEmployedCount, r.PrevDepartedCount, ratio,
		float64(r.IsHoliday), float64(r.IsSpringFestival),
		float64(r.Hour), float64(r.DayOfWeek), float64(r.Quarter), float64(r.Month),
		float64(r.Year), float64(r.DayOfYear),
		r.SinDay, r.CosDay, float64(r.DayOfMonth), float64(r.WeekOfYear),
	}
}

// withDate 重新计算与日期相关的全部特征（农历、节假日、时间索引）
func (r FeatureRow) withDate(cal *Calendar, date time.Time) FeatureRow {
	date = Day(date)
	cf := cal.Derive(date)
	r.Date = date
	r.LunarYear = cf.LunarYear
	r.LunarMonth = cf.LunarMonth
	r.LunarDay = cf.LunarDay
	r.IsHoliday = cf.IsHoliday
	r.IsSpringFestival = cf.IsSpringFestival
	r.TimeIndex = NewTimeIndex(date)
	return r
}

// LabeledRow 特征行及其标签（当天离职人数）
type LabeledRow struct {
	FeatureRow
	Label float64
}

// Constructor 特征表构造器
type Constructor struct {
	cal *Calendar
}

// NewConstructor 创建特征表构造器
func NewConstructor(cal *Calendar) *Constructor {
	if cal == nil {
		cal = NewCalendar(nil)
	}
	return &Constructor{cal: cal}
}

// Calendar 返回构造器使用的日历
func (c *Constructor) Calendar() *Calendar { return c.cal }

// Build 把稠密日序列转换为等长、同序的特征表
// 输入不连续时整体失败，不输出部分特征表
func (c *Constructor) Build(records []DailyRecord) ([]LabeledRow, error) {
	if err := ValidateDense(records); err != nil {
		return nil, err
	}

	rows := make([]LabeledRow, len(records))
	for i, rec := range records {
		prev := rec
		if i > 0 {
			prev = records[i-1]
		}

		row := FeatureRow{
			PrevEmployedCount: float64(prev.EmployedCount),
			PrevDepartedCount: float64(prev.DepartedCount),
		}
		row.DepartureRatio = Ratio(row.PrevDepartedCount, row.PrevEmployedCount)
		rows[i] = LabeledRow{
			FeatureRow: row.withDate(c.cal, rec.Date),
			Label:      float64(rec.DepartedCount),
		}
	}
	return rows, nil
}

// SplitAt 按日期切分：history 为 date 之前的行，rest 为 date 及之后的行
func SplitAt(rows []LabeledRow, date time.Time) (history, rest []LabeledRow) {
	date = Day(date)
	for i, r := range rows {
		if !Day(r.Date).Before(date) {
			return rows[:i], rows[i:]
		}
	}
	return rows, nil
}

// Matrix 提取特征矩阵与标签
func Matrix(rows []LabeledRow) ([][]float64, []float64) {
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Vector()
		y[i] = r.Label
	}
	return x, y
}
