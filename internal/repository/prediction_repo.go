package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dimission-forecast/internal/model"
)

// PredictionRepository 预测结果数据访问接口（只追加）
type PredictionRepository interface {
	Append(ctx context.Context, rows []model.Prediction) error
	// ListByStartDate 返回以 date 为起始日的全部预测，最新写入在前
	ListByStartDate(ctx context.Context, date time.Time) ([]model.Prediction, error)
	// ListDaily 返回 date 当天的单日预测，最新写入在前
	ListDaily(ctx context.Context, date time.Time) ([]model.Prediction, error)
}

type predictionRepo struct {
	db *gorm.DB
}

// NewPredictionRepo 创建 PredictionRepository 实例
func NewPredictionRepo(db *gorm.DB) PredictionRepository {
	return &predictionRepo{db: db}
}

func (r *predictionRepo) Append(ctx context.Context, rows []model.Prediction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *predictionRepo) ListByStartDate(ctx context.Context, date time.Time) ([]model.Prediction, error) {
	var rows []model.Prediction
	err := r.db.WithContext(ctx).
		Where("start_date = ?", date).
		Order("created_at DESC, prediction_id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *predictionRepo) ListDaily(ctx context.Context, date time.Time) ([]model.Prediction, error) {
	var rows []model.Prediction
	err := r.db.WithContext(ctx).
		Where("start_date = ? AND end_date = ?", date, date).
		Order("created_at DESC, prediction_id DESC").
		Find(&rows).Error
	return rows, err
}
