package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dimission-forecast/internal/model"
)

// MonitorRepository 预测监控数据访问接口（只追加）
type MonitorRepository interface {
	Append(ctx context.Context, rows []model.MonitorRecord) error
	ListByDate(ctx context.Context, date time.Time) ([]model.MonitorRecord, error)
}

type monitorRepo struct {
	db *gorm.DB
}

// NewMonitorRepo 创建 MonitorRepository 实例
func NewMonitorRepo(db *gorm.DB) MonitorRepository {
	return &monitorRepo{db: db}
}

func (r *monitorRepo) Append(ctx context.Context, rows []model.MonitorRecord) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *monitorRepo) ListByDate(ctx context.Context, date time.Time) ([]model.MonitorRecord, error) {
	var rows []model.MonitorRecord
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("unit ASC, created_at DESC").
		Find(&rows).Error
	return rows, err
}
