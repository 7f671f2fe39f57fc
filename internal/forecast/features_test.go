package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailyRecords(start time.Time, employed, departed []int) []DailyRecord {
	out := make([]DailyRecord, len(employed))
	for i := range employed {
		out[i] = DailyRecord{
			Date:          start.AddDate(0, 0, i),
			EmployedCount: employed[i],
			DepartedCount: departed[i],
		}
	}
	return out
}

func TestConstructor_Build_LagBoundary(t *testing.T) {
	records := dailyRecords(date(2024, time.April, 1),
		[]int{120, 118, 117, 117},
		[]int{2, 1, 0, 3},
	)

	rows, err := NewConstructor(nil).Build(records)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// 首行使用当天自身的值
	assert.Equal(t, 120.0, rows[0].PrevEmployedCount)
	assert.Equal(t, 2.0, rows[0].PrevDepartedCount)

	for i := 1; i < len(rows); i++ {
		assert.Equal(t, float64(records[i-1].EmployedCount), rows[i].PrevEmployedCount)
		assert.Equal(t, float64(records[i-1].DepartedCount), rows[i].PrevDepartedCount)
		assert.InDelta(t, rows[i].PrevDepartedCount/rows[i].PrevEmployedCount, rows[i].DepartureRatio, 1e-12)
	}
	for i, r := range rows {
		assert.Equal(t, records[i].Date, r.Date)
		assert.Equal(t, float64(records[i].DepartedCount), r.Label)
	}
}

func TestConstructor_Build_CalendarAndTimeIndex(t *testing.T) {
	records := dailyRecords(date(2024, time.February, 9), []int{10, 10, 10}, []int{0, 0, 0})

	rows, err := NewConstructor(nil).Build(records)
	require.NoError(t, err)

	newYear := rows[1]
	assert.Equal(t, date(2024, time.February, 10), newYear.Date)
	assert.Equal(t, 1, newYear.LunarMonth)
	assert.Equal(t, 1, newYear.LunarDay)
	assert.Equal(t, 1, newYear.IsSpringFestival)
	assert.Equal(t, 5, newYear.DayOfWeek) // 周六
	assert.Equal(t, 41, newYear.DayOfYear)
	assert.Equal(t, 1, newYear.Quarter)
	assert.Equal(t, 0, newYear.Hour)
}

func TestConstructor_Build_RejectsGaps(t *testing.T) {
	records := []DailyRecord{
		{Date: date(2024, time.April, 1), EmployedCount: 10},
		{Date: date(2024, time.April, 3), EmployedCount: 10},
	}
	rows, err := NewConstructor(nil).Build(records)
	assert.ErrorIs(t, err, ErrData)
	assert.Nil(t, rows)
}

func TestNewTimeIndex(t *testing.T) {
	ti := NewTimeIndex(date(2024, time.January, 1))
	assert.Equal(t, 0, ti.DayOfWeek) // 周一
	assert.Equal(t, 1, ti.Quarter)
	assert.Equal(t, 1, ti.Month)
	assert.Equal(t, 2024, ti.Year)
	assert.Equal(t, 1, ti.DayOfYear)
	assert.Equal(t, 1, ti.DayOfMonth)
	assert.Equal(t, 1, ti.WeekOfYear)
	assert.InDelta(t, math.Sin(1), ti.SinDay, 1e-12)
	assert.InDelta(t, math.Cos(1), ti.CosDay, 1e-12)

	// ISO 周：2021-01-03 属于 2020 年第 53 周
	assert.Equal(t, 53, NewTimeIndex(date(2021, time.January, 3)).WeekOfYear)
	assert.Equal(t, 4, NewTimeIndex(date(2024, time.November, 30)).Quarter)
}

func TestFeatureRow_Vector(t *testing.T) {
	rows, err := NewConstructor(nil).Build(dailyRecords(date(2024, time.May, 6), []int{50}, []int{5}))
	require.NoError(t, err)

	v := rows[0].Vector()
	require.Len(t, v, len(FeatureNames))
	assert.Equal(t, 50.0, v[3])
	assert.Equal(t, 5.0, v[4])
	assert.InDelta(t, 0.1, v[5], 1e-12)
}

func TestFeatureRow_Vector_GuardsUndefinedRatio(t *testing.T) {
	rows, err := NewConstructor(nil).Build(dailyRecords(date(2024, time.May, 6), []int{0, 0}, []int{0, 1}))
	require.NoError(t, err)

	assert.True(t, math.IsNaN(rows[1].DepartureRatio))
	assert.Equal(t, 0.0, rows[1].Vector()[5])

	row := rows[1].FeatureRow
	row.PrevDepartedCount = 2
	row.DepartureRatio = Ratio(2, 0)
	assert.True(t, math.IsInf(row.DepartureRatio, 1))
	assert.Equal(t, 0.0, row.Vector()[5])
}

func TestSplitAt(t *testing.T) {
	rows, err := NewConstructor(nil).Build(dailyRecords(date(2024, time.May, 1),
		[]int{1, 1, 1, 1, 1}, []int{0, 0, 0, 0, 0}))
	require.NoError(t, err)

	history, rest := SplitAt(rows, date(2024, time.May, 4))
	assert.Len(t, history, 3)
	require.Len(t, rest, 2)
	assert.Equal(t, date(2024, time.May, 4), rest[0].Date)

	history, rest = SplitAt(rows, date(2024, time.June, 1))
	assert.Len(t, history, 5)
	assert.Empty(t, rest)
}
