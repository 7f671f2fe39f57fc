package forecast

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSpringFestival_Rule(t *testing.T) {
	cases := []struct {
		month, day int
		want       int
	}{
		{1, 1, 1},
		{1, 3, 1},
		{1, 7, 1},
		{1, 8, 0},
		{6, 15, 0},
		{12, 25, 0},
		{12, 26, 1},
		{12, 27, 1},
		{12, 30, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SpringFestival(tc.month, tc.day), "lunar %d-%d", tc.month, tc.day)
	}
}

func TestCalendar_Derive_LunarNewYear(t *testing.T) {
	cal := NewCalendar(nil)

	f := cal.Derive(date(2024, time.February, 10))
	assert.Equal(t, 2024, f.LunarYear)
	assert.Equal(t, 1, f.LunarMonth)
	assert.Equal(t, 1, f.LunarDay)
	assert.False(t, f.IsLeapMonth)
	assert.Equal(t, 1, f.IsSpringFestival)
	assert.Equal(t, 1, f.IsHoliday)
}

func TestCalendar_Derive_OrdinaryDay(t *testing.T) {
	cal := NewCalendar(nil)

	f := cal.Derive(date(2024, time.June, 12))
	assert.Equal(t, 0, f.IsSpringFestival)
	assert.Equal(t, 0, f.IsHoliday)
}

func TestCalendar_Derive_NationalDay(t *testing.T) {
	f := NewCalendar(nil).Derive(date(2024, time.October, 1))
	assert.Equal(t, 1, f.IsHoliday)
}

func TestCalendar_Derive_RecentYears(t *testing.T) {
	cal := NewCalendar(nil)
	for _, d := range []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 28), // 除夕
		date(2025, time.May, 1),
		date(2025, time.October, 1),
		date(2026, time.January, 1),
		date(2026, time.May, 1),
		date(2026, time.October, 1),
	} {
		assert.Equal(t, 1, cal.Derive(d).IsHoliday, d.Format(DateLayout))
	}
}

func solarOfLunar(y, m, d int) time.Time {
	s := calendar.NewLunarFromYmd(y, m, d).GetSolar()
	return date(s.GetYear(), time.Month(s.GetMonth()), s.GetDay())
}

func TestCalendar_Derive_BeyondHolidayTable(t *testing.T) {
	const year = 2035
	require.Zero(t, HolidayUtil.GetHolidaysByYear(year).Len(), "放假安排表不应收录 %d 年", year)

	newYear := solarOfLunar(year, 1, 1)
	holidays := []time.Time{
		date(year, time.January, 1),
		newYear.AddDate(0, 0, -1),
		newYear,
		newYear.AddDate(0, 0, 2),
		date(year, time.May, 1),
		date(year, time.May, 2),
		solarOfLunar(year, 5, 5),
		solarOfLunar(year, 8, 15),
		date(year, time.October, 1),
		date(year, time.October, 3),
	}

	cal := NewCalendar(nil)
	for _, d := range holidays {
		assert.Equal(t, 1, cal.Derive(d).IsHoliday, d.Format(DateLayout))
	}

	qingming := 0
	for d := date(year, time.April, 1); d.Before(date(year, time.April, 10)); d = d.AddDate(0, 0, 1) {
		qingming += cal.Derive(d).IsHoliday
	}
	assert.Equal(t, 1, qingming, "清明应恰好一天")

	for _, d := range []time.Time{
		newYear.AddDate(0, 0, 3),
		date(year, time.May, 3),
		date(year, time.October, 8),
		date(year, time.March, 11),
	} {
		assert.Equal(t, 0, cal.Derive(d).IsHoliday, d.Format(DateLayout))
	}
}

func TestStatutoryHoliday_BeforeReform(t *testing.T) {
	assert.True(t, statutoryHoliday(date(2024, time.May, 1)))
	assert.False(t, statutoryHoliday(date(2024, time.May, 2)))
	// 2024 除夕
	assert.False(t, statutoryHoliday(date(2024, time.February, 9)))
	assert.True(t, statutoryHoliday(date(2024, time.February, 10)))
}

func TestCalendar_Derive_IgnoresTimeOfDay(t *testing.T) {
	cal := NewCalendar(nil)
	a := cal.Derive(time.Date(2024, time.March, 3, 23, 59, 0, 0, time.UTC))
	b := cal.Derive(date(2024, time.March, 3))
	assert.Equal(t, b, a)
}

func TestLoadHolidayOverrides(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//dimission-forecast//test//CN",
		"BEGIN:VEVENT",
		"UID:plant-anniversary",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20240612",
		"DTEND;VALUE=DATE:20240614",
		"SUMMARY:厂庆",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:makeup-workday",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20241001",
		"DTEND;VALUE=DATE:20241002",
		"SUMMARY:加班",
		"CATEGORIES:WORKDAY",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	overrides, err := LoadHolidayOverrides(strings.NewReader(ics))
	require.NoError(t, err)
	assert.True(t, overrides["2024-06-12"])
	assert.True(t, overrides["2024-06-13"])
	assert.NotContains(t, overrides, "2024-06-14")

	cal := NewCalendar(overrides)
	assert.Equal(t, 1, cal.Derive(date(2024, time.June, 12)).IsHoliday)
	assert.Equal(t, 0, cal.Derive(date(2024, time.June, 14)).IsHoliday)
	assert.Equal(t, 0, cal.Derive(date(2024, time.October, 1)).IsHoliday)
}

func TestNewCalendar_CopiesOverrides(t *testing.T) {
	overrides := map[string]bool{"2024-06-12": true}
	cal := NewCalendar(overrides)
	overrides["2024-06-12"] = false

	assert.Equal(t, 1, cal.Derive(date(2024, time.June, 12)).IsHoliday)
}
