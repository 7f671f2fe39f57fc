package forecast

import (
	"time"
)

// DefaultFarFuture 在职员工的默认离职日期占位
var DefaultFarFuture = time.Date(2045, 12, 31, 0, 0, 0, 0, time.UTC)

// EmploymentRecord 一条雇佣事件记录
// 在职员工的 DepartureDate 为远期占位日期
type EmploymentRecord struct {
	JoinDate      time.Time
	DepartureDate time.Time
}

// DailyRecord 某组织单元某一天的在职与离职人数
type DailyRecord struct {
	Date          time.Time
	EmployedCount int
	DepartedCount int
}

// ParseEmploymentRecord 由原始日期字符串构造记录
// departure 为空时视为在职，使用 farFuture 占位
func ParseEmploymentRecord(join, departure string, farFuture time.Time) (EmploymentRecord, error) {
	j, err := ParseDay(join)
	if err != nil {
		return EmploymentRecord{}, err
	}
	d := Day(farFuture)
	if departure != "" {
		if d, err = ParseDay(departure); err != nil {
			return EmploymentRecord{}, err
		}
	}
	rec := EmploymentRecord{JoinDate: j, DepartureDate: d}
	return rec, rec.validate()
}

func (r EmploymentRecord) validate() error {
	if r.JoinDate.IsZero() {
		return dataErrorf("入职日期为空")
	}
	if r.DepartureDate.IsZero() {
		return dataErrorf("离职日期为空")
	}
	if Day(r.DepartureDate).Before(Day(r.JoinDate)) {
		return dataErrorf("离职日期 %s 早于入职日期 %s",
			r.DepartureDate.Format(DateLayout), r.JoinDate.Format(DateLayout))
	}
	return nil
}

// BuildDailySeries 把雇佣事件转换为 [start, end] 闭区间内逐日的稠密序列
//
//	employed_count(d) = |{r : join ≤ d 且 departure > d}|，两类记录合并计算
//	departed_count(d) = |{r ∈ departed : departure == d}|，缺失日期补 0
//
// 在职人数用区间差分数组扫描计算，结果与逐日逐条计数一致。
func BuildDailySeries(employed, departed []EmploymentRecord, start, end time.Time) ([]DailyRecord, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, dataErrorf("日期范围无效: %s > %s", start.Format(DateLayout), end.Format(DateLayout))
	}
	n := DaysBetween(start, end)

	// diff[i] 记录第 i 天在职人数的增量，多一位存放越界的减量
	diff := make([]int, n+1)
	departedCount := make([]int, n)

	addInterval := func(r EmploymentRecord) {
		// 在职区间为 [join, departure)
		from := int(Day(r.JoinDate).Sub(start).Hours() / 24)
		to := int(Day(r.DepartureDate).Sub(start).Hours() / 24)
		if from < 0 {
			from = 0
		}
		if to > n {
			to = n
		}
		if from >= to {
			return
		}
		diff[from]++
		diff[to]--
	}

	for _, r := range employed {
		if err := r.validate(); err != nil {
			return nil, err
		}
		addInterval(r)
	}
	for _, r := range departed {
		if err := r.validate(); err != nil {
			return nil, err
		}
		addInterval(r)

		idx := int(Day(r.DepartureDate).Sub(start).Hours() / 24)
		if idx >= 0 && idx < n {
			departedCount[idx]++
		}
	}

	records := make([]DailyRecord, n)
	running := 0
	for i := 0; i < n; i++ {
		running += diff[i]
		records[i] = DailyRecord{
			Date:          start.AddDate(0, 0, i),
			EmployedCount: running,
			DepartedCount: departedCount[i],
		}
	}
	return records, nil
}

// ValidateDense 校验序列逐日连续、升序且计数非负
func ValidateDense(records []DailyRecord) error {
	for i, r := range records {
		if r.EmployedCount < 0 || r.DepartedCount < 0 {
			return dataErrorf("%s 人数为负", r.Date.Format(DateLayout))
		}
		if i == 0 {
			continue
		}
		want := Day(records[i-1].Date).AddDate(0, 0, 1)
		if !Day(r.Date).Equal(want) {
			return dataErrorf("序列在 %s 之后不连续（下一行为 %s）",
				records[i-1].Date.Format(DateLayout), r.Date.Format(DateLayout))
		}
	}
	return nil
}
