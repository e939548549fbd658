package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// fakeLoader 每轮都返回同一个快照实例，配合 mutatingStore
// 模拟“落库后下一轮读到新状态”。
type fakeLoader struct {
	snap *Snapshot
	err  error
}

func (l *fakeLoader) Load(ctx context.Context) (*Snapshot, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.snap, nil
}

// mutatingStore 把更新直接写回快照里的实体。
type mutatingStore struct {
	snap *Snapshot
}

func (s *mutatingStore) UpdateFields(ctx context.Context, kind, id string, fields map[string]any) error {
	switch kind {
	case vehicle.Table:
		for i := range s.snap.Vehicles {
			if s.snap.Vehicles[i].ID != id {
				continue
			}
			if v, ok := fields["status"]; ok {
				s.snap.Vehicles[i].Status = v.(vehicle.Status)
			}
			if v, ok := fields["assigned_driver_id"]; ok {
				if v == nil {
					s.snap.Vehicles[i].AssignedDriverID = nil
				} else {
					d := v.(string)
					s.snap.Vehicles[i].AssignedDriverID = &d
				}
			}
			return nil
		}
	case maintenance.Table:
		for i := range s.snap.Orders {
			if s.snap.Orders[i].ID != id {
				continue
			}
			if v, ok := fields["status"]; ok {
				s.snap.Orders[i].Status = v.(maintenance.Status)
			}
			return nil
		}
	case schedule.Table:
		for i := range s.snap.Schedules {
			if s.snap.Schedules[i].ID != id {
				continue
			}
			if v, ok := fields["status"]; ok {
				s.snap.Schedules[i].Status = v.(schedule.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown target %s/%s", kind, id)
}

func TestEnginePassIsIdempotent(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{
			testVehicle("v1", vehicle.StatusActive, strPtr("d1")),
			testVehicle("v2", vehicle.StatusActive, strPtr("d2")),
		},
		Drivers: []driver.Driver{testDriver("d1"), testDriver("d2")},
		Orders: []maintenance.Order{
			// 今天开工
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 6, 15), day(2024, 6, 20)),
		},
		Schedules: []schedule.VehicleSchedule{
			// 昨天到期
			testSchedule("s1", "v2", "d2", schedule.StatusActive, day(2024, 6, 1), day(2024, 6, 14)),
		},
	}
	engine := NewEngine(&fakeLoader{snap: snap}, &mutatingStore{snap: snap}, nil)

	report, err := engine.RunPass(context.Background(), day(2024, 6, 15))
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	// m1 激活、v1 进维保、s1 完结、v2 回空闲
	if report.Computed != 4 || report.Failed != 0 {
		t.Fatalf("expected 4 applied updates, got %+v", report)
	}
	if snap.Vehicles[0].Status != vehicle.StatusMaintenance || snap.Vehicles[0].AssignedDriverID != nil {
		t.Fatalf("v1 not transitioned: %+v", snap.Vehicles[0])
	}
	if snap.Vehicles[1].Status != vehicle.StatusIdle || snap.Vehicles[1].AssignedDriverID != nil {
		t.Fatalf("v2 not transitioned: %+v", snap.Vehicles[1])
	}

	// 对已经对齐的数据再跑一轮必须是空转
	report, err = engine.RunPass(context.Background(), day(2024, 6, 15))
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if report.Computed != 0 {
		t.Fatalf("second pass must be a no-op, got %+v", report.Applied)
	}
}

// 同一天维保单和排班同时激活：维保优先级必须压过排班的车辆副作用，
// 不能因为合并顺序把车辆又写回 active。
func TestEngineSameDayOrderAndScheduleActivation(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 6, 5), day(2024, 6, 9)),
		},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}
	engine := NewEngine(&fakeLoader{snap: snap}, &mutatingStore{snap: snap}, nil)

	report, err := engine.RunPass(context.Background(), day(2024, 6, 5))
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Computed != 3 || report.Failed != 0 {
		t.Fatalf("expected m1 + s1 + v1 updates, got %+v", report)
	}
	if u, ok := findApplied(report.Applied, maintenance.Table, "m1"); !ok || u.Fields["status"] != maintenance.StatusActive {
		t.Fatalf("m1 not activated: %+v", report.Applied)
	}
	if u, ok := findApplied(report.Applied, schedule.Table, "s1"); !ok || u.Fields["status"] != schedule.StatusActive {
		t.Fatalf("s1 not activated: %+v", report.Applied)
	}
	vu, ok := findApplied(report.Applied, vehicle.Table, "v1")
	if !ok || vu.Fields["status"] != vehicle.StatusMaintenance {
		t.Fatalf("v1 must end up in maintenance, got %+v", vu)
	}
	if _, ok := vu.Fields["assigned_driver_id"]; ok {
		t.Fatalf("maintenance activation must not leave a driver assignment: %+v", vu)
	}
	if snap.Vehicles[0].Status != vehicle.StatusMaintenance || snap.Vehicles[0].AssignedDriverID != nil {
		t.Fatalf("v1 state after pass: %+v", snap.Vehicles[0])
	}

	report, err = engine.RunPass(context.Background(), day(2024, 6, 5))
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if report.Computed != 0 {
		t.Fatalf("second pass must be a no-op, got %+v", report.Applied)
	}
}

// 镜像场景：同一天维保单完结、排班激活，车辆必须交给排班
// （active + 该排班司机），而不是停在 idle 或 maintenance。
func TestEngineSameDayOrderCompletionAndScheduleActivation(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusMaintenance, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusActive, day(2024, 5, 20), day(2024, 6, 4)),
		},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}
	engine := NewEngine(&fakeLoader{snap: snap}, &mutatingStore{snap: snap}, nil)

	report, err := engine.RunPass(context.Background(), day(2024, 6, 5))
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Computed != 3 || report.Failed != 0 {
		t.Fatalf("expected m1 + s1 + v1 updates, got %+v", report)
	}
	if u, ok := findApplied(report.Applied, maintenance.Table, "m1"); !ok || u.Fields["status"] != maintenance.StatusCompleted {
		t.Fatalf("m1 not completed: %+v", report.Applied)
	}
	vu, ok := findApplied(report.Applied, vehicle.Table, "v1")
	if !ok || vu.Fields["status"] != vehicle.StatusActive || vu.Fields["assigned_driver_id"] != "d1" {
		t.Fatalf("v1 must hand over to the activating schedule, got %+v", vu)
	}
	if snap.Vehicles[0].Status != vehicle.StatusActive || snap.Vehicles[0].Assigned() != "d1" {
		t.Fatalf("v1 state after pass: %+v", snap.Vehicles[0])
	}

	report, err = engine.RunPass(context.Background(), day(2024, 6, 5))
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if report.Computed != 0 {
		t.Fatalf("second pass must be a no-op, got %+v", report.Applied)
	}
}

// 维保在途期间排班到期激活：司机占用要登记到车辆上，
// 但运行状态保持 maintenance。
func TestEngineScheduleActivationUnderOngoingMaintenance(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusMaintenance, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusActive, day(2024, 6, 1), day(2024, 6, 9)),
		},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}
	engine := NewEngine(&fakeLoader{snap: snap}, &mutatingStore{snap: snap}, nil)

	report, err := engine.RunPass(context.Background(), day(2024, 6, 5))
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Computed != 2 || report.Failed != 0 {
		t.Fatalf("expected s1 + v1 updates, got %+v", report)
	}
	vu, ok := findApplied(report.Applied, vehicle.Table, "v1")
	if !ok || vu.Fields["assigned_driver_id"] != "d1" {
		t.Fatalf("driver claim not recorded: %+v", report.Applied)
	}
	if _, ok := vu.Fields["status"]; ok {
		t.Fatalf("vehicle status must stay maintenance untouched: %+v", vu)
	}
	if snap.Vehicles[0].Status != vehicle.StatusMaintenance || snap.Vehicles[0].Assigned() != "d1" {
		t.Fatalf("v1 state after pass: %+v", snap.Vehicles[0])
	}
}

func TestEngineReportsPartialFailure(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusActive, strPtr("d1"))},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 6, 15), day(2024, 6, 20)),
		},
	}
	engine := NewEngine(&fakeLoader{snap: snap}, &recordingStore{failOn: "v1"}, nil)

	report, err := engine.RunPass(context.Background(), day(2024, 6, 15))
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if report.Computed != 2 || report.Failed != 1 {
		t.Fatalf("expected one isolated failure, got %+v", report)
	}
}

func TestEngineLoadErrorAbortsPass(t *testing.T) {
	engine := NewEngine(&fakeLoader{err: fmt.Errorf("db gone")}, &recordingStore{}, nil)
	if _, err := engine.RunPass(context.Background(), day(2024, 6, 15)); err == nil {
		t.Fatalf("expected load error to abort the pass")
	}
}
