package maintenance

import "time"

// Table maintenance_orders 表名。
const Table = "maintenance_orders"

// Status 维保单状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled Status = "scheduled" // 已预约，等待开始日期
	StatusActive    Status = "active"    // 维保进行中
	StatusCompleted Status = "completed" // 已完成（终态）
)

// Order 维保单 GORM 模型。
// StartDate / EstimatedCompletionDate 为自然日闭区间，
// 状态流转完全由日期驱动（见 internal/reconcile）。
type Order struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	VehicleID string `gorm:"index;size:36;not null" json:"vehicle_id"`
	Status    Status `gorm:"type:varchar(16);index;not null" json:"status"`

	StartDate               time.Time `gorm:"type:date;not null" json:"start_date"`
	EstimatedCompletionDate time.Time `gorm:"type:date;not null" json:"estimated_completion_date"`

	Urgent      bool   `gorm:"not null;default:false" json:"urgent"`
	Description string `gorm:"size:255" json:"description"`
	QuotedCost  int64  `gorm:"not null;default:0" json:"quoted_cost"` // 报价（单位：分），与对账无关

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string { return Table }
