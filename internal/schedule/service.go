package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

var (
	// ErrDateConflict 新排班与该车辆已有 scheduled/active 排班日期重叠。
	ErrDateConflict = errors.New("schedule conflicts with an existing schedule")
	// ErrInvalidWindow 开始日期晚于结束日期，或日期缺失。
	ErrInvalidWindow = errors.New("invalid schedule window")
	// ErrVehicleNotFound 引用的车辆不存在。
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrDriverNotFound 引用的司机不存在。
	ErrDriverNotFound = errors.New("driver not found")
)

// scheduleStore Service 依赖的存储面，收敛成小接口便于测试替换。
type scheduleStore interface {
	Create(ctx context.Context, s *VehicleSchedule) error
	GetByID(ctx context.Context, id string) (*VehicleSchedule, error)
	List(ctx context.Context, vehicleID, driverID string, status Status, offset, limit int) ([]VehicleSchedule, int64, error)
	ListOpenByVehicle(ctx context.Context, vehicleID string) ([]VehicleSchedule, error)
}

type vehicleFinder interface {
	FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

type driverFinder interface {
	FindByID(ctx context.Context, id string) (*driver.Driver, error)
}

// Service 封装排班领域用例。
type Service struct {
	repo     scheduleStore
	vehicles vehicleFinder
	drivers  driverFinder
}

func NewService(repo *Repo, vehicles *vehicle.Repo, drivers *driver.Repo) *Service {
	s := &Service{}
	if repo != nil {
		s.repo = repo
	}
	if vehicles != nil {
		s.vehicles = vehicles
	}
	if drivers != nil {
		s.drivers = drivers
	}
	return s
}

// CreateScheduleInput 创建排班的入参。
type CreateScheduleInput struct {
	VehicleID string
	DriverID  string
	StartDate time.Time
	EndDate   time.Time
}

// CreateSchedule 创建排班：
// - 校验车辆、司机存在
// - 校验日期区间合法
// - 校验与该车辆已有 scheduled/active 排班不重叠（重叠即拒绝，不落库）
// 对账引擎依赖这条创建时校验来保证“同车同类记录不同时 active”的全局不变式。
func (s *Service) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*VehicleSchedule, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	vehicleID := strings.TrimSpace(in.VehicleID)
	driverID := strings.TrimSpace(in.DriverID)
	if vehicleID == "" {
		return nil, fmt.Errorf("vehicle_id required")
	}
	if driverID == "" {
		return nil, fmt.Errorf("driver_id required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, ErrInvalidWindow
	}
	if daterange.After(in.StartDate, in.EndDate) {
		return nil, ErrInvalidWindow
	}

	if s.vehicles != nil {
		if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVehicleNotFound
			}
			return nil, err
		}
	}
	if s.drivers != nil {
		if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDriverNotFound
			}
			return nil, err
		}
	}

	open, err := s.repo.ListOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	ranges := make([]daterange.Range, 0, len(open))
	for _, sc := range open {
		ranges = append(ranges, daterange.Range{Start: sc.StartDate, End: sc.EndDate})
	}
	if daterange.HasOverlap(in.StartDate, in.EndDate, ranges) {
		return nil, ErrDateConflict
	}

	sc := &VehicleSchedule{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		DriverID:  driverID,
		Status:    StatusScheduled,
		StartDate: daterange.DayStart(in.StartDate),
		EndDate:   daterange.DayStart(in.EndDate),
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *Service) GetSchedule(ctx context.Context, id string) (*VehicleSchedule, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListSchedulesFilter 查询条件。
type ListSchedulesFilter struct {
	VehicleID string
	DriverID  string
	Status    Status
	Offset    int
	Limit     int
}

func (s *Service) ListSchedules(ctx context.Context, f ListSchedulesFilter) ([]VehicleSchedule, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, strings.TrimSpace(f.VehicleID), strings.TrimSpace(f.DriverID), f.Status, f.Offset, f.Limit)
}
