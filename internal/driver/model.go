package driver

import "time"

// Table drivers 表名。
const Table = "drivers"

// Driver 是 drivers 表的 GORM 模型。
// 这里的 Status 是雇佣/在职状态，由运营维护，
// 与车辆的派生状态无关，对账引擎不会修改它。
type Driver struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	LicenseNo string    `gorm:"uniqueIndex;size:32;not null" json:"license_no"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Status    string    `gorm:"size:16;not null;default:'on_duty'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Driver) TableName() string { return Table }
