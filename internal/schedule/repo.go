package schedule

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, s *VehicleSchedule) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(s).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*VehicleSchedule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s VehicleSchedule
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// List 支持按 vehicle_id / driver_id / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, vehicleID, driverID string, status Status, offset, limit int) ([]VehicleSchedule, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&VehicleSchedule{})
	if vehicleID != "" {
		q = q.Where("vehicle_id = ?", vehicleID)
	}
	if driverID != "" {
		q = q.Where("driver_id = ?", driverID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var schedules []VehicleSchedule
	if err := q.Order("start_date, id").Offset(offset).Limit(limit).Find(&schedules).Error; err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

// ListOpenByVehicle 返回某车辆所有未完结（scheduled/active）的排班，
// 创建时做日期冲突校验使用。
func (r *Repo) ListOpenByVehicle(ctx context.Context, vehicleID string) ([]VehicleSchedule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var schedules []VehicleSchedule
	err := db.Where("vehicle_id = ? AND status IN ?", vehicleID, []Status{StatusScheduled, StatusActive}).
		Order("start_date, id").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListAll 拉取全量排班快照（对账引擎使用）。
func (r *Repo) ListAll(ctx context.Context) ([]VehicleSchedule, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var schedules []VehicleSchedule
	if err := db.Order("start_date, id").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}
