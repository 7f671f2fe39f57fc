package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dimission-forecast/internal/model"
)

// SeriesRepository 每日人数序列数据访问接口
type SeriesRepository interface {
	// ReplaceUnit 在同一事务中整体替换单元的日序列
	ReplaceUnit(ctx context.Context, unit string, rows []model.DailySeries) error
	// ListByUnit 按日期升序返回 [start, end] 内的序列
	ListByUnit(ctx context.Context, unit string, start, end time.Time) ([]model.DailySeries, error)
	GetByUnitDate(ctx context.Context, unit string, date time.Time) (*model.DailySeries, error)
	// LastDate 单元序列的最后一天，无数据时返回 gorm.ErrRecordNotFound
	LastDate(ctx context.Context, unit string) (time.Time, error)
}

type seriesRepo struct {
	db *gorm.DB
}

// NewSeriesRepo 创建 SeriesRepository 实例
func NewSeriesRepo(db *gorm.DB) SeriesRepository {
	return &seriesRepo{db: db}
}

func (r *seriesRepo) ReplaceUnit(ctx context.Context, unit string, rows []model.DailySeries) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit = ?", unit).Delete(&model.DailySeries{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *seriesRepo) ListByUnit(ctx context.Context, unit string, start, end time.Time) ([]model.DailySeries, error) {
	var rows []model.DailySeries
	err := r.db.WithContext(ctx).
		Where("unit = ? AND date BETWEEN ? AND ?", unit, start, end).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *seriesRepo) GetByUnitDate(ctx context.Context, unit string, date time.Time) (*model.DailySeries, error) {
	var row model.DailySeries
	err := r.db.WithContext(ctx).
		Where("unit = ? AND date = ?", unit, date).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *seriesRepo) LastDate(ctx context.Context, unit string) (time.Time, error) {
	var row model.DailySeries
	err := r.db.WithContext(ctx).
		Where("unit = ?", unit).
		Order("date DESC").
		First(&row).Error
	if err != nil {
		return time.Time{}, err
	}
	return row.Date, nil
}
