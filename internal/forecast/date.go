package forecast

import "time"

// DateLayout 日期字符串格式
const DateLayout = "2006-01-02"

// Day 截断为 UTC 零点，所有日期比较都基于该形式
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay 解析 YYYY-MM-DD 格式日期
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, dataErrorf("无法解析日期 %q", s)
	}
	return t, nil
}

// DaysBetween 返回 [start, end] 闭区间的天数
func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/24) + 1
}
