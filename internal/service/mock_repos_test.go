package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
	pkgerrors "dimission-forecast/pkg/errors"
)

var errMockDB = errors.New("mock: 数据库不可用")

// ── Mock EmploymentRepository ──

type mockEmploymentRepo struct {
	mu      sync.Mutex
	records map[string][]model.EmploymentRecord
	failFor map[string]bool
}

func newMockEmploymentRepo() *mockEmploymentRepo {
	return &mockEmploymentRepo{
		records: make(map[string][]model.EmploymentRecord),
		failFor: make(map[string]bool),
	}
}

func (m *mockEmploymentRepo) ListEmployed(_ context.Context, unit, category, payType string) ([]model.EmploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[unit] {
		return nil, errMockDB
	}
	var out []model.EmploymentRecord
	for _, r := range m.records[unit] {
		if r.DepartureDate != nil {
			continue
		}
		if category != "" && r.StaffCategory != category {
			continue
		}
		if payType != "" && r.PayType != payType {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockEmploymentRepo) ListDeparted(_ context.Context, unit, category string, reasons []string, start, end time.Time) ([]model.EmploymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[unit] {
		return nil, errMockDB
	}
	allowed := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		allowed[r] = true
	}
	var out []model.EmploymentRecord
	for _, r := range m.records[unit] {
		if r.DepartureDate == nil || r.DepartureDate.Before(start) || r.DepartureDate.After(end) {
			continue
		}
		if category != "" && r.StaffCategory != category {
			continue
		}
		if len(allowed) > 0 && !allowed[r.DepartureReason] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockEmploymentRepo) ReplaceUnit(_ context.Context, unit string, records []model.EmploymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[unit] {
		return errMockDB
	}
	m.records[unit] = append([]model.EmploymentRecord(nil), records...)
	return nil
}

func (m *mockEmploymentRepo) CountByUnit(_ context.Context, unit string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records[unit])), nil
}

// ── Mock SeriesRepository ──

type mockSeriesRepo struct {
	mu     sync.Mutex
	series map[string][]model.DailySeries
}

func newMockSeriesRepo() *mockSeriesRepo {
	return &mockSeriesRepo{series: make(map[string][]model.DailySeries)}
}

func (m *mockSeriesRepo) ReplaceUnit(_ context.Context, unit string, rows []model.DailySeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[unit] = append([]model.DailySeries(nil), rows...)
	return nil
}

func (m *mockSeriesRepo) ListByUnit(_ context.Context, unit string, start, end time.Time) ([]model.DailySeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DailySeries
	for _, r := range m.series[unit] {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *mockSeriesRepo) GetByUnitDate(_ context.Context, unit string, date time.Time) (*model.DailySeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.series[unit] {
		if r.Date.Equal(date) {
			row := r
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSeriesRepo) LastDate(_ context.Context, unit string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last time.Time
	for _, r := range m.series[unit] {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	if last.IsZero() {
		return last, gorm.ErrRecordNotFound
	}
	return last, nil
}

// ── Mock PredictionRepository ──

// 追加顺序即写入时间顺序，查询时最新在前
type mockPredictionRepo struct {
	mu      sync.Mutex
	rows    []model.Prediction
	appends int
	failErr error
}

func newMockPredictionRepo() *mockPredictionRepo {
	return &mockPredictionRepo{}
}

func (m *mockPredictionRepo) Append(_ context.Context, rows []model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.appends++
	for _, r := range rows {
		r.PredictionID = int64(len(m.rows) + 1)
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *mockPredictionRepo) latestFirst(keep func(model.Prediction) bool) []model.Prediction {
	var out []model.Prediction
	for i := len(m.rows) - 1; i >= 0; i-- {
		if keep(m.rows[i]) {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *mockPredictionRepo) ListByStartDate(_ context.Context, date time.Time) ([]model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.latestFirst(func(p model.Prediction) bool { return p.StartDate.Equal(date) }), nil
}

func (m *mockPredictionRepo) ListDaily(_ context.Context, date time.Time) ([]model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestFirst(func(p model.Prediction) bool {
		return p.StartDate.Equal(date) && p.EndDate.Equal(date)
	}), nil
}

// ── Mock MonitorRepository ──

type mockMonitorRepo struct {
	mu   sync.Mutex
	rows []model.MonitorRecord
}

func newMockMonitorRepo() *mockMonitorRepo {
	return &mockMonitorRepo{}
}

func (m *mockMonitorRepo) Append(_ context.Context, rows []model.MonitorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *mockMonitorRepo) ListByDate(_ context.Context, date time.Time) ([]model.MonitorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MonitorRecord
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].Date.Equal(date) {
			out = append(out, m.rows[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Unit < out[j].Unit })
	return out, nil
}

// ── Mock Cache ──

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	deletes []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) GetCache(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return nil, pkgerrors.ErrCacheMiss
	}
	return b, nil
}

func (c *mockCache) SetCache(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) DeleteCache(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes = append(c.deletes, key)
	return nil
}

// ── 测试数据构造 ──

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// constantSeries 从 start 起 n 天，在职人数逐日递减 departed，每天离职 departed 人
func constantSeries(unit string, start time.Time, n, employed, departed int) []model.DailySeries {
	rows := make([]model.DailySeries, n)
	for i := range rows {
		rows[i] = model.DailySeries{
			Unit:          unit,
			Date:          forecast.Day(start.AddDate(0, 0, i)),
			EmployedCount: employed - i*departed,
			DepartedCount: departed,
		}
	}
	return rows
}
