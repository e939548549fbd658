package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

var (
	// ErrDateConflict 新维保单与该车辆已有 scheduled/active 维保单日期重叠。
	ErrDateConflict = errors.New("maintenance window conflicts with an existing order")
	// ErrInvalidWindow 开始日期晚于预计完成日期，或日期缺失。
	ErrInvalidWindow = errors.New("invalid maintenance window")
	// ErrVehicleNotFound 引用的车辆不存在。
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// orderStore Service 依赖的存储面，收敛成小接口便于测试替换。
type orderStore interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, vehicleID string, status Status, offset, limit int) ([]Order, int64, error)
	ListOpenByVehicle(ctx context.Context, vehicleID string) ([]Order, error)
}

type vehicleFinder interface {
	FindByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
}

// Service 封装维保单领域用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	repo     orderStore
	vehicles vehicleFinder
}

func NewService(repo *Repo, vehicles *vehicle.Repo) *Service {
	s := &Service{}
	if repo != nil {
		s.repo = repo
	}
	if vehicles != nil {
		s.vehicles = vehicles
	}
	return s
}

// CreateOrderInput 创建维保单的入参。
type CreateOrderInput struct {
	VehicleID               string
	StartDate               time.Time
	EstimatedCompletionDate time.Time
	Urgent                  bool
	Description             string
	QuotedCost              int64
}

// CreateOrder 创建维保单：
// - 校验车辆存在
// - 校验日期区间合法（start <= estimated_completion）
// - 校验与该车辆已有 scheduled/active 维保单不重叠（重叠即拒绝，不落库）
// 创建后状态固定为 scheduled，后续流转全部交给对账引擎。
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	vehicleID := strings.TrimSpace(in.VehicleID)
	if vehicleID == "" {
		return nil, fmt.Errorf("vehicle_id required")
	}
	if in.StartDate.IsZero() || in.EstimatedCompletionDate.IsZero() {
		return nil, ErrInvalidWindow
	}
	if daterange.After(in.StartDate, in.EstimatedCompletionDate) {
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

	open, err := s.repo.ListOpenByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	ranges := make([]daterange.Range, 0, len(open))
	for _, o := range open {
		ranges = append(ranges, daterange.Range{Start: o.StartDate, End: o.EstimatedCompletionDate})
	}
	if daterange.HasOverlap(in.StartDate, in.EstimatedCompletionDate, ranges) {
		return nil, ErrDateConflict
	}

	o := &Order{
		ID:                      uuid.NewString(),
		VehicleID:               vehicleID,
		Status:                  StatusScheduled,
		StartDate:               daterange.DayStart(in.StartDate),
		EstimatedCompletionDate: daterange.DayStart(in.EstimatedCompletionDate),
		Urgent:                  in.Urgent,
		Description:             strings.TrimSpace(in.Description),
		QuotedCost:              in.QuotedCost,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id required")
	}
	return s.repo.GetByID(ctx, id)
}

// ListOrdersFilter 查询条件。
type ListOrdersFilter struct {
	VehicleID string
	Status    Status
	Offset    int
	Limit     int
}

func (s *Service) ListOrders(ctx context.Context, f ListOrdersFilter) ([]Order, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, strings.TrimSpace(f.VehicleID), f.Status, f.Offset, f.Limit)
}
