package reconcile

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// Snapshot 一轮对账开始时的全量内存快照。
// 两阶段模型：先一次性读取，再对着快照纯计算，最后统一落库，
// 计算过程中不回头查库，避免一轮内部的读写竞争。
type Snapshot struct {
	Vehicles  []vehicle.Vehicle
	Drivers   []driver.Driver
	Orders    []maintenance.Order
	Schedules []schedule.VehicleSchedule

	vehicleByID map[string]*vehicle.Vehicle
	driverByID  map[string]*driver.Driver
}

// Vehicle 按 ID 查快照内的车辆。
func (s *Snapshot) Vehicle(id string) (*vehicle.Vehicle, bool) {
	if s.vehicleByID == nil {
		s.vehicleByID = make(map[string]*vehicle.Vehicle, len(s.Vehicles))
		for i := range s.Vehicles {
			s.vehicleByID[s.Vehicles[i].ID] = &s.Vehicles[i]
		}
	}
	v, ok := s.vehicleByID[id]
	return v, ok
}

// Driver 按 ID 查快照内的司机。
func (s *Snapshot) Driver(id string) (*driver.Driver, bool) {
	if s.driverByID == nil {
		s.driverByID = make(map[string]*driver.Driver, len(s.Drivers))
		for i := range s.Drivers {
			s.driverByID[s.Drivers[i].ID] = &s.Drivers[i]
		}
	}
	d, ok := s.driverByID[id]
	return d, ok
}

// Loader 快照加载器。
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// GormLoader 基于 GORM 的快照加载器。
type GormLoader struct {
	vehicles  *vehicle.Repo
	drivers   *driver.Repo
	orders    *maintenance.Repo
	schedules *schedule.Repo
}

func NewGormLoader(db *gorm.DB) *GormLoader {
	return &GormLoader{
		vehicles:  vehicle.NewRepo(db),
		drivers:   driver.NewRepo(db),
		orders:    maintenance.NewRepo(db),
		schedules: schedule.NewRepo(db),
	}
}

func (l *GormLoader) Load(ctx context.Context) (*Snapshot, error) {
	if l == nil {
		return nil, fmt.Errorf("loader is nil")
	}
	vehicles, err := l.vehicles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	drivers, err := l.drivers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	orders, err := l.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load maintenance orders: %w", err)
	}
	schedules, err := l.schedules.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	return &Snapshot{Vehicles: vehicles, Drivers: drivers, Orders: orders, Schedules: schedules}, nil
}
