package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dimission-forecast/internal/model"
)

// EmploymentRepository 人事记录数据访问接口
type EmploymentRepository interface {
	// ListEmployed 当前在职（离职日期为空）的指定类别、计薪方式人员
	ListEmployed(ctx context.Context, unit, category, payType string) ([]model.EmploymentRecord, error)
	// ListDeparted 离职日期落在 [start, end] 且离职方式在 reasons 中的人员
	ListDeparted(ctx context.Context, unit, category string, reasons []string, start, end time.Time) ([]model.EmploymentRecord, error)
	// ReplaceUnit 在同一事务中替换单元的全部人事记录
	ReplaceUnit(ctx context.Context, unit string, records []model.EmploymentRecord) error
	CountByUnit(ctx context.Context, unit string) (int64, error)
}

type employmentRepo struct {
	db *gorm.DB
}

// NewEmploymentRepo 创建 EmploymentRepository 实例
func NewEmploymentRepo(db *gorm.DB) EmploymentRepository {
	return &employmentRepo{db: db}
}

func (r *employmentRepo) ListEmployed(ctx context.Context, unit, category, payType string) ([]model.EmploymentRecord, error) {
	var records []model.EmploymentRecord
	db := r.db.WithContext(ctx).
		Where("unit = ? AND departure_date IS NULL", unit)
	if category != "" {
		db = db.Where("staff_category = ?", category)
	}
	if payType != "" {
		db = db.Where("pay_type = ?", payType)
	}
	err := db.Order("join_date ASC").Find(&records).Error
	return records, err
}

func (r *employmentRepo) ListDeparted(ctx context.Context, unit, category string, reasons []string, start, end time.Time) ([]model.EmploymentRecord, error) {
	var records []model.EmploymentRecord
	db := r.db.WithContext(ctx).
		Where("unit = ?", unit).
		Where("departure_date BETWEEN ? AND ?", start, end)
	if category != "" {
		db = db.Where("staff_category = ?", category)
	}
	if len(reasons) > 0 {
		db = db.Where("departure_reason IN ?", reasons)
	}
	err := db.Order("departure_date ASC").Find(&records).Error
	return records, err
}

func (r *employmentRepo) ReplaceUnit(ctx context.Context, unit string, records []model.EmploymentRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit = ?", unit).Delete(&model.EmploymentRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 500).Error
	})
}

func (r *employmentRepo) CountByUnit(ctx context.Context, unit string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.EmploymentRecord{}).
		Where("unit = ?", unit).
		Count(&n).Error
	return n, err
}
