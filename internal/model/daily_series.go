package model

import "time"

// DailySeries 单元每日在职/离职人数 — 对应 daily_series
type DailySeries struct {
	Unit          string    `gorm:"type:varchar(16);primaryKey"        json:"unit"`
	Date          time.Time `gorm:"type:date;primaryKey"               json:"date"`
	EmployedCount int       `gorm:"not null"                           json:"employed_count"`
	DepartedCount int       `gorm:"not null"                           json:"departed_count"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (DailySeries) TableName() string { return "daily_series" }
