package model

import "time"

// MonitorRecord 单日预测监控 — 对应 monitor_data（只追加）
type MonitorRecord struct {
	MonitorID int64     `gorm:"primaryKey;autoIncrement"           json:"monitor_id"`
	Unit      string    `gorm:"type:varchar(16);not null"          json:"unit"`
	Date      time.Time `gorm:"type:date;not null"                 json:"date"`
	Actual    int       `gorm:"not null"                           json:"actual"`
	Predicted int       `gorm:"not null"                           json:"predicted"`
	MAE       float64   `gorm:"column:mae;not null"                json:"mae"`
	MAERate   float64   `gorm:"column:mae_rate;not null"           json:"mae_rate"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (MonitorRecord) TableName() string { return "monitor_data" }
