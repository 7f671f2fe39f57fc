package model

import "time"

// Prediction 多日预测结果 — 对应 prediction_data（只追加）
// 同一次预测任务写入的记录共享 RunID
type Prediction struct {
	PredictionID int64     `gorm:"primaryKey;autoIncrement"           json:"prediction_id"`
	RunID        string    `gorm:"type:uuid;not null"                 json:"run_id"`
	Unit         string    `gorm:"type:varchar(16);not null"          json:"unit"`
	StartDate    time.Time `gorm:"type:date;not null"                 json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null"                 json:"end_date"`
	Days         int       `gorm:"not null"                           json:"days"`
	Number       int       `gorm:"not null"                           json:"number"`  // 四舍五入且非负
	RawSum       float64   `gorm:"not null"                           json:"raw_sum"` // 逐日原始预测之和
	Model        string    `gorm:"type:varchar(16);not null"          json:"model"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Prediction) TableName() string { return "prediction_data" }
