package reconcile

import (
	"testing"

	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

func TestScheduleActivation(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}

	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 3), nil)
	su, ok := findUpdate(updates, schedule.Table, "s1")
	if !ok || su.Fields["status"] != schedule.StatusActive {
		t.Fatalf("expected schedule activated, got %+v", updates)
	}
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update")
	}
	if vu.Fields["assigned_driver_id"] != "d1" {
		t.Fatalf("expected driver d1 assigned, got %+v", vu.Fields)
	}
	if vu.Fields["status"] != vehicle.StatusActive {
		t.Fatalf("expected vehicle active, got %+v", vu.Fields)
	}
}

func TestScheduleActivationChecksBothBounds(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}

	// 还没到开始日期
	if updates := ReconcileVehicleSchedules(snap, day(2024, 5, 31), nil); len(updates) != 0 {
		t.Fatalf("expected no activation before start, got %+v", updates)
	}
	// 窗口整体已经错过：与维保不同，结束边界也参与激活判断
	if updates := ReconcileVehicleSchedules(snap, day(2024, 6, 11), nil); len(updates) != 0 {
		t.Fatalf("expected no activation after window passed, got %+v", updates)
	}
	// 两端都含在内
	if updates := ReconcileVehicleSchedules(snap, day(2024, 6, 10), nil); len(updates) == 0 {
		t.Fatalf("expected activation on the end day itself")
	}
}

func TestScheduleActivationUnderMaintenanceKeepsStatus(t *testing.T) {
	// 车辆维保中：司机占用要登记，但状态不能被改成 active
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusMaintenance, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}

	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 3), nil)
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update: %+v", updates)
	}
	if vu.Fields["assigned_driver_id"] != "d1" {
		t.Fatalf("driver claim must still be recorded, got %+v", vu.Fields)
	}
	if _, present := vu.Fields["status"]; present {
		t.Fatalf("vehicle status must stay maintenance, got %+v", vu.Fields)
	}
}

func TestScheduleCompletionFallsBackToIdle(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusActive, strPtr("d1"))},
		Drivers:  []driver.Driver{testDriver("d1")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusActive, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}

	// 结束日当天仍在窗口内
	if updates := ReconcileVehicleSchedules(snap, day(2024, 6, 10), nil); len(updates) != 0 {
		t.Fatalf("expected no completion on the end day, got %+v", updates)
	}

	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 11), nil)
	su, ok := findUpdate(updates, schedule.Table, "s1")
	if !ok || su.Fields["status"] != schedule.StatusCompleted {
		t.Fatalf("expected schedule completed, got %+v", updates)
	}
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update")
	}
	if drv, present := vu.Fields["assigned_driver_id"]; !present || drv != nil {
		t.Fatalf("expected driver cleared, got %+v", vu.Fields)
	}
	if vu.Fields["status"] != vehicle.StatusIdle {
		t.Fatalf("expected vehicle idle, got %+v", vu.Fields)
	}
}

func TestScheduleCompletionMaintenanceWins(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusActive, strPtr("d1"))},
		Drivers:  []driver.Driver{testDriver("d1")},
		Orders: []maintenance.Order{
			// scheduled 的维保单同样占住维保优先级
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 7, 1), day(2024, 7, 5)),
		},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusActive, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}

	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 11), nil)
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update: %+v", updates)
	}
	if vu.Fields["status"] != vehicle.StatusMaintenance {
		t.Fatalf("maintenance must win, got %+v", vu.Fields)
	}
	if drv, present := vu.Fields["assigned_driver_id"]; !present || drv != nil {
		t.Fatalf("expected driver cleared under maintenance, got %+v", vu.Fields)
	}
}

func TestScheduleCompletionHandsOverToOtherActiveSchedule(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusActive, strPtr("d1"))},
		Drivers:  []driver.Driver{testDriver("d1"), testDriver("d2")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d1", schedule.StatusActive, day(2024, 6, 1), day(2024, 6, 10)),
			testSchedule("s2", "v1", "d2", schedule.StatusActive, day(2024, 6, 5), day(2024, 6, 20)),
		},
	}

	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 11), nil)
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update: %+v", updates)
	}
	// “清空”被另一条在途排班的司机覆盖；状态本来就是 active，不重复写
	if vu.Fields["assigned_driver_id"] != "d2" {
		t.Fatalf("expected handover to d2, got %+v", vu.Fields)
	}
	if _, present := vu.Fields["status"]; present {
		t.Fatalf("status already active, should not be rewritten, got %+v", vu.Fields)
	}
}

func TestScheduleUnknownDriverSkipsRecord(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Drivers:  []driver.Driver{testDriver("d1")},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "ghost", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
			testSchedule("s2", "v1", "d1", schedule.StatusScheduled, day(2024, 6, 1), day(2024, 6, 10)),
		},
	}
	updates := ReconcileVehicleSchedules(snap, day(2024, 6, 3), nil)
	if _, ok := findUpdate(updates, schedule.Table, "s1"); ok {
		t.Fatalf("schedule referencing unknown driver must be skipped")
	}
	if _, ok := findUpdate(updates, schedule.Table, "s2"); !ok {
		t.Fatalf("remaining schedules must still be processed")
	}
}
