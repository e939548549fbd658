package vehicle

import "time"

// Table vehicles 表名（对账引擎按表名定位更新目标）。
const Table = "vehicles"

// Status 车辆运行状态枚举。
// 一旦车辆存在维保单/排班，状态与司机分配即为派生字段，
// 只允许对账引擎修改，用户侧不得直接写入。
type Status string

const (
	StatusActive      Status = "active"      // 执行排班中（已分配司机）
	StatusMaintenance Status = "maintenance" // 维保中
	StatusIdle        Status = "idle"        // 空闲
)

// Vehicle 是 vehicles 表的 GORM 模型。
type Vehicle struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	PlateNumber string `gorm:"uniqueIndex;size:32;not null" json:"plate_number"`
	VIN         string `gorm:"size:64" json:"vin"`
	Model       string `gorm:"size:64" json:"model"`

	// 派生状态：由对账引擎按“维保 > 在途排班 > 空闲”优先级维护
	Status           Status  `gorm:"type:varchar(16);index;not null" json:"status"`
	AssignedDriverID *string `gorm:"index;size:36" json:"assigned_driver_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Vehicle) TableName() string { return Table }

// Assigned 返回当前分配的司机 ID（未分配时为空串）。
func (v Vehicle) Assigned() string {
	if v.AssignedDriverID == nil {
		return ""
	}
	return *v.AssignedDriverID
}
