//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dimission-forecast/internal/model"
	"dimission-forecast/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=dimission password=dimission_password dbname=dimission_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.EmploymentRecord{},
		&model.DailySeries{},
		&model.Prediction{},
		&model.MonitorRecord{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testUnit 生成唯一单元编码并注册清理函数
func testUnit(t *testing.T) string {
	t.Helper()
	unit := "t" + uuid.NewString()[:8]
	t.Cleanup(func() {
		testDB.Where("unit = ?", unit).Delete(&model.EmploymentRecord{})
		testDB.Where("unit = ?", unit).Delete(&model.DailySeries{})
		testDB.Where("unit = ?", unit).Delete(&model.Prediction{})
		testDB.Where("unit = ?", unit).Delete(&model.MonitorRecord{})
	})
	return unit
}

// ═══════════════════════════════════════════════════════════
// Test: Employment
// ═══════════════════════════════════════════════════════════

func TestEmployment_ReplaceAndFilter(t *testing.T) {
	unit := testUnit(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	left := day(2024, 3, 5)
	records := []model.EmploymentRecord{
		{Unit: unit, StaffCategory: "员工", PayType: "日薪", JoinDate: day(2023, 1, 1)},
		{Unit: unit, StaffCategory: "员工", PayType: "月薪", JoinDate: day(2023, 2, 1)},
		{Unit: unit, StaffCategory: "员工", PayType: "日薪", JoinDate: day(2023, 3, 1), DepartureDate: &left, DepartureReason: "辞职"},
		{Unit: unit, StaffCategory: "员工", PayType: "日薪", JoinDate: day(2023, 3, 1), DepartureDate: &left, DepartureReason: "离厂"},
	}
	if err := repo.Employment.ReplaceUnit(ctx, unit, records); err != nil {
		t.Fatalf("ReplaceUnit 失败: %v", err)
	}

	employed, err := repo.Employment.ListEmployed(ctx, unit, "员工", "日薪")
	if err != nil {
		t.Fatalf("ListEmployed 失败: %v", err)
	}
	if len(employed) != 1 {
		t.Errorf("期望 1 名日薪在职，实际 %d", len(employed))
	}

	departed, err := repo.Employment.ListDeparted(ctx, unit, "员工", []string{"辞职", "自离"}, day(2024, 3, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("ListDeparted 失败: %v", err)
	}
	if len(departed) != 1 || departed[0].DepartureReason != "辞职" {
		t.Errorf("离职方式过滤错误: %+v", departed)
	}

	// 再次替换只保留新记录
	if err := repo.Employment.ReplaceUnit(ctx, unit, records[:1]); err != nil {
		t.Fatalf("第二次 ReplaceUnit 失败: %v", err)
	}
	n, err := repo.Employment.CountByUnit(ctx, unit)
	if err != nil {
		t.Fatalf("CountByUnit 失败: %v", err)
	}
	if n != 1 {
		t.Errorf("替换后期望 1 条记录，实际 %d", n)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Series
// ═══════════════════════════════════════════════════════════

func TestSeries_ReplaceListLast(t *testing.T) {
	unit := testUnit(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Series.LastDate(ctx, unit); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("空序列期望 ErrRecordNotFound，实际: %v", err)
	}

	var rows []model.DailySeries
	for i := 0; i < 5; i++ {
		rows = append(rows, model.DailySeries{
			Unit: unit, Date: day(2024, 5, 1).AddDate(0, 0, i),
			EmployedCount: 100 - i, DepartedCount: i % 2,
		})
	}
	if err := repo.Series.ReplaceUnit(ctx, unit, rows); err != nil {
		t.Fatalf("ReplaceUnit 失败: %v", err)
	}
	if err := repo.Series.ReplaceUnit(ctx, unit, rows); err != nil {
		t.Fatalf("重复 ReplaceUnit 不应违反主键: %v", err)
	}

	got, err := repo.Series.ListByUnit(ctx, unit, day(2024, 5, 2), day(2024, 5, 4))
	if err != nil {
		t.Fatalf("ListByUnit 失败: %v", err)
	}
	if len(got) != 3 || got[0].EmployedCount != 99 {
		t.Errorf("ListByUnit 结果错误: %+v", got)
	}

	last, err := repo.Series.LastDate(ctx, unit)
	if err != nil {
		t.Fatalf("LastDate 失败: %v", err)
	}
	if !last.Equal(day(2024, 5, 5)) {
		t.Errorf("LastDate = %v", last)
	}

	one, err := repo.Series.GetByUnitDate(ctx, unit, day(2024, 5, 4))
	if err != nil {
		t.Fatalf("GetByUnitDate 失败: %v", err)
	}
	if one.DepartedCount != 1 {
		t.Errorf("DepartedCount = %d", one.DepartedCount)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Prediction / Monitor
// ═══════════════════════════════════════════════════════════

func TestPrediction_AppendOnly(t *testing.T) {
	unit := testUnit(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	start := day(2024, 6, 1)
	run := func(number int) {
		t.Helper()
		runID := uuid.NewString()
		err := repo.Prediction.Append(ctx, []model.Prediction{
			{RunID: runID, Unit: unit, StartDate: start, EndDate: start, Days: 1, Number: number, Model: "xgboost"},
			{RunID: runID, Unit: unit, StartDate: start, EndDate: start.AddDate(0, 0, 2), Days: 3, Number: number * 3, Model: "lgbm"},
		})
		if err != nil {
			t.Fatalf("Append 失败: %v", err)
		}
	}
	run(1)
	run(2)

	all, err := repo.Prediction.ListByStartDate(ctx, start)
	if err != nil {
		t.Fatalf("ListByStartDate 失败: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("只追加：期望 4 条，实际 %d", len(all))
	}

	daily, err := repo.Prediction.ListDaily(ctx, start)
	if err != nil {
		t.Fatalf("ListDaily 失败: %v", err)
	}
	if len(daily) != 2 || daily[0].Number != 2 {
		t.Errorf("ListDaily 应最新在前: %+v", daily)
	}
}

func TestMonitor_AppendAndList(t *testing.T) {
	unit := testUnit(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	date := day(2024, 6, 2)
	err := repo.Monitor.Append(ctx, []model.MonitorRecord{
		{Unit: unit, Date: date, Actual: 4, Predicted: 6, MAE: 2, MAERate: 2 / (4 + 1e-5)},
	})
	if err != nil {
		t.Fatalf("Append 失败: %v", err)
	}

	rows, err := repo.Monitor.ListByDate(ctx, date)
	if err != nil {
		t.Fatalf("ListByDate 失败: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.Unit == unit {
			found = true
			if r.MAE != 2 {
				t.Errorf("MAE = %v", r.MAE)
			}
		}
	}
	if !found {
		t.Error("未查到写入的监控记录")
	}
}
