package schedule

import "time"

// Table vehicle_schedules 表名。
const Table = "vehicle_schedules"

// Status 排班状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled Status = "scheduled" // 已排班，等待开始日期
	StatusActive    Status = "active"    // 执行中（车辆已交给司机）
	StatusCompleted Status = "completed" // 已结束（终态）
)

// VehicleSchedule 车辆排班 GORM 模型。
// 与维保单不同：激活窗口同时校验两端
// （StartDate <= today <= EndDate），开始日期已过但窗口整体
// 已经错过的排班不会被激活。
type VehicleSchedule struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	VehicleID string `gorm:"index;size:36;not null" json:"vehicle_id"`
	DriverID  string `gorm:"index;size:36;not null" json:"driver_id"`
	Status    Status `gorm:"type:varchar(16);index;not null" json:"status"`

	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (VehicleSchedule) TableName() string { return Table }
