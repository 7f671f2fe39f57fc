package forecast

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
	ics "github.com/arran4/golang-ical"
)

// ── 农历与节假日特征 ──────────────────────────────────────────
//
// 职责：把公历日期换算为农历年/月/日，并判断法定节假日与春节窗口。
//
// 设计决策：
//   - 农历换算使用固定的查表算法（lunar-go），不依赖任何外部状态
//   - 法定节假日取中国国务院公布的放假安排，调休上班日不算节假日
//   - 放假安排表未收录的年份按《全国年节及纪念日放假办法》规则推算，
//     只含法定假日本身，不含调休连休
//   - 可选的 ICS 覆盖文件用于补充公司自定义假期，构造后不可变
// ─────────────────────────────────────────────────────────────

// CalendarFeatures 单个日期的日历特征
type CalendarFeatures struct {
	LunarYear        int
	LunarMonth       int // 闰月同样返回正数月份
	LunarDay         int
	IsLeapMonth      bool
	IsHoliday        int // 0/1
	IsSpringFestival int // 0/1
}

// Calendar 日历特征推导器
type Calendar struct {
	overrides map[string]bool // date → 是否为假期
	covered   sync.Map        // year → 放假安排表是否收录
}

// NewCalendar 创建日历推导器，overrides 为空时仅使用法定节假日
func NewCalendar(overrides map[string]bool) *Calendar {
	cp := make(map[string]bool, len(overrides))
	for k, v := range overrides {
		cp[k] = v
	}
	return &Calendar{overrides: cp}
}

// Derive 计算日期的农历与节假日特征
func (c *Calendar) Derive(date time.Time) CalendarFeatures {
	date = Day(date)
	lunar := calendar.NewSolarFromYmd(date.Year(), int(date.Month()), date.Day()).GetLunar()

	month := lunar.GetMonth()
	leap := month < 0
	if leap {
		month = -month
	}

	f := CalendarFeatures{
		LunarYear:   lunar.GetYear(),
		LunarMonth:  month,
		LunarDay:    lunar.GetDay(),
		IsLeapMonth: leap,
	}
	if c.isHoliday(date) {
		f.IsHoliday = 1
	}
	f.IsSpringFestival = SpringFestival(f.LunarMonth, f.LunarDay)
	return f
}

func (c *Calendar) isHoliday(date time.Time) bool {
	if c != nil {
		if v, ok := c.overrides[date.Format(DateLayout)]; ok {
			return v
		}
	}
	if !c.tableCovers(date.Year()) {
		return statutoryHoliday(date)
	}
	h := HolidayUtil.GetHolidayByYmd(date.Year(), int(date.Month()), date.Day())
	return h != nil && !h.IsWork()
}

func (c *Calendar) tableCovers(year int) bool {
	if c == nil {
		return HolidayUtil.GetHolidaysByYear(year).Len() > 0
	}
	if v, ok := c.covered.Load(year); ok {
		return v.(bool)
	}
	ok := HolidayUtil.GetHolidaysByYear(year).Len() > 0
	c.covered.Store(year, ok)
	return ok
}

// 2025 年起除夕与 5 月 2 日列入法定假日
const reformYear = 2025

// statutoryHoliday 按规则推算法定假日：
// 元旦、春节（正月初一至初三）、清明、劳动节、端午、中秋、国庆（10 月 1–3 日）
func statutoryHoliday(date time.Time) bool {
	m, d := date.Month(), date.Day()
	switch {
	case m == time.January && d == 1,
		m == time.May && d == 1,
		m == time.May && d == 2 && date.Year() >= reformYear,
		m == time.October && d <= 3:
		return true
	}

	lunar := calendar.NewSolarFromYmd(date.Year(), int(m), d).GetLunar()
	lm, ld := lunar.GetMonth(), lunar.GetDay()
	switch {
	case lm == 1 && ld <= 3,
		lm == 5 && ld == 5,
		lm == 8 && ld == 15:
		return true
	}
	if lunar.GetJieQi() == "清明" {
		return true
	}
	if date.Year() >= reformYear {
		next := date.AddDate(0, 0, 1)
		nl := calendar.NewSolarFromYmd(next.Year(), int(next.Month()), next.Day()).GetLunar()
		return nl.GetMonth() == 1 && nl.GetDay() == 1
	}
	return false
}

// SpringFestival 春节窗口：腊月廿六至三十、正月初一至初七
// 固定规则，不随每年春节实际收假日期调整
func SpringFestival(lunarMonth, lunarDay int) int {
	if lunarMonth == 1 && lunarDay >= 1 && lunarDay <= 7 {
		return 1
	}
	if lunarMonth == 12 && lunarDay >= 26 && lunarDay <= 30 {
		return 1
	}
	return 0
}

// LoadHolidayOverrides 从 iCalendar 内容读取自定义假期
//
// 每个全天 VEVENT 覆盖 [DTSTART, DTEND) 内的日期；
// CATEGORIES 含 WORKDAY 的事件表示调休上班，覆盖为非假期。
func LoadHolidayOverrides(reader io.Reader) (map[string]bool, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: 假期日历解析失败: %v", ErrConfig, err)
	}

	overrides := make(map[string]bool)
	for _, evt := range cal.Events() {
		start, err := evt.GetAllDayStartAt()
		if err != nil {
			continue
		}
		end, err := evt.GetAllDayEndAt()
		if err != nil || !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}

		holiday := true
		if cat := evt.GetProperty(ics.ComponentPropertyCategories); cat != nil &&
			strings.Contains(strings.ToUpper(cat.Value), "WORKDAY") {
			holiday = false
		}

		for d := Day(start); d.Before(Day(end)); d = d.AddDate(0, 0, 1) {
			overrides[d.Format(DateLayout)] = holiday
		}
	}
	return overrides, nil
}
