package model

import "time"

// EmploymentRecord 人事在/离职记录 — 对应 employment_records
// DepartureDate 为空表示仍在职
type EmploymentRecord struct {
	RecordID        int64      `gorm:"primaryKey;autoIncrement"                 json:"record_id"`
	Unit            string     `gorm:"type:varchar(16);not null;index"          json:"unit"`
	StaffCategory   string     `gorm:"type:varchar(32);not null;default:'员工'"   json:"staff_category"`
	PayType         string     `gorm:"type:varchar(32);not null;default:''"     json:"pay_type"`
	JoinDate        time.Time  `gorm:"type:date;not null"                       json:"join_date"`
	DepartureDate   *time.Time `gorm:"type:date"                                json:"departure_date,omitempty"`
	DepartureReason string     `gorm:"type:varchar(64);not null;default:''"     json:"departure_reason"`
	BaseModel
}

// TableName 指定表名
func (EmploymentRecord) TableName() string { return "employment_records" }
