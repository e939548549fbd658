package reconcile

import (
	"testing"
	"time"

	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

func TestMaintenanceActivation(t *testing.T) {
	// 开始日 2024-01-01、预计完成 2024-01-05，today = 开始日当天
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusActive, strPtr("d1"))},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 1, 1), day(2024, 1, 5)),
		},
	}

	updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 1), nil)
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d: %+v", len(updates), updates)
	}

	ou, ok := findUpdate(updates, maintenance.Table, "m1")
	if !ok {
		t.Fatalf("missing order update")
	}
	if got := ou.Fields["status"]; got != maintenance.StatusActive {
		t.Fatalf("order status = %v, want active", got)
	}
	if len(ou.Fields) != 1 {
		t.Fatalf("order update must touch status only, got %+v", ou.Fields)
	}

	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update")
	}
	if got := vu.Fields["status"]; got != vehicle.StatusMaintenance {
		t.Fatalf("vehicle status = %v, want maintenance", got)
	}
	if drv, present := vu.Fields["assigned_driver_id"]; !present || drv != nil {
		t.Fatalf("expected assigned_driver_id cleared to NULL, got %+v", vu.Fields)
	}
}

func TestMaintenanceActivationNotDueYet(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 1, 2), day(2024, 1, 5)),
		},
	}
	if updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 1), nil); len(updates) != 0 {
		t.Fatalf("expected no updates before start date, got %+v", updates)
	}
}

func TestMaintenanceActivationSameDayWithClockTime(t *testing.T) {
	// today 带时分秒也要按自然日比较
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, day(2024, 1, 1), day(2024, 1, 5)),
		},
	}
	today := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	if updates := ReconcileMaintenanceOrders(snap, today, nil); len(updates) != 2 {
		t.Fatalf("expected activation on the start day itself, got %+v", updates)
	}
}

func TestMaintenanceCompletionToIdle(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusMaintenance, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusActive, day(2024, 1, 1), day(2024, 1, 5)),
		},
	}

	// 完成日当天还不算超期
	if updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 5), nil); len(updates) != 0 {
		t.Fatalf("expected no completion on the estimated completion day, got %+v", updates)
	}

	updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 6), nil)
	ou, ok := findUpdate(updates, maintenance.Table, "m1")
	if !ok || ou.Fields["status"] != maintenance.StatusCompleted {
		t.Fatalf("expected order completed, got %+v", updates)
	}
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update")
	}
	if vu.Fields["status"] != vehicle.StatusIdle {
		t.Fatalf("vehicle should fall back to idle, got %+v", vu.Fields)
	}
}

func TestMaintenanceCompletionHandsOverToActiveSchedule(t *testing.T) {
	// 预置脏数据：维保单和排班同时 active。
	// 维保完结时必须把车辆交还给排班的司机，而不是置为空闲。
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusMaintenance, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusActive, day(2024, 1, 1), day(2024, 1, 5)),
		},
		Schedules: []schedule.VehicleSchedule{
			testSchedule("s1", "v1", "d7", schedule.StatusActive, day(2024, 1, 1), day(2024, 1, 31)),
		},
	}

	updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 6), nil)
	vu, ok := findUpdate(updates, vehicle.Table, "v1")
	if !ok {
		t.Fatalf("missing vehicle update: %+v", updates)
	}
	if vu.Fields["status"] != vehicle.StatusActive {
		t.Fatalf("vehicle should return to active, got %+v", vu.Fields)
	}
	if vu.Fields["assigned_driver_id"] != "d7" {
		t.Fatalf("vehicle should be handed back to schedule driver d7, got %+v", vu.Fields)
	}
}

func TestMaintenanceMalformedDatesLeaveStatusAlone(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusScheduled, time.Time{}, day(2024, 1, 5)),
			testOrder("m2", "v1", maintenance.StatusActive, day(2024, 1, 1), time.Time{}),
		},
	}
	if updates := ReconcileMaintenanceOrders(snap, day(2024, 6, 1), nil); len(updates) != 0 {
		t.Fatalf("zero dates must not trigger transitions, got %+v", updates)
	}
}

func TestMaintenanceUnknownVehicleSkipsRecord(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "ghost", maintenance.StatusScheduled, day(2024, 1, 1), day(2024, 1, 5)),
			testOrder("m2", "v1", maintenance.StatusScheduled, day(2024, 1, 1), day(2024, 1, 5)),
		},
	}
	updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 1), nil)
	if _, ok := findUpdate(updates, maintenance.Table, "m1"); ok {
		t.Fatalf("order referencing unknown vehicle must be skipped entirely")
	}
	if _, ok := findUpdate(updates, maintenance.Table, "m2"); !ok {
		t.Fatalf("remaining orders must still be processed")
	}
}

func TestMaintenanceCompletedOrdersUntouched(t *testing.T) {
	snap := &Snapshot{
		Vehicles: []vehicle.Vehicle{testVehicle("v1", vehicle.StatusIdle, nil)},
		Orders: []maintenance.Order{
			testOrder("m1", "v1", maintenance.StatusCompleted, day(2023, 1, 1), day(2023, 1, 5)),
		},
	}
	if updates := ReconcileMaintenanceOrders(snap, day(2024, 1, 1), nil); len(updates) != 0 {
		t.Fatalf("completed is terminal, got %+v", updates)
	}
}
