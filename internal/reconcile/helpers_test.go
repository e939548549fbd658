package reconcile

import (
	"time"

	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func testVehicle(id string, status vehicle.Status, assigned *string) vehicle.Vehicle {
	return vehicle.Vehicle{
		ID:               id,
		PlateNumber:      "沪A-" + id,
		Status:           status,
		AssignedDriverID: assigned,
	}
}

func testDriver(id string) driver.Driver {
	return driver.Driver{ID: id, Name: "driver " + id, LicenseNo: "L-" + id, Status: "on_duty"}
}

func testOrder(id, vehicleID string, status maintenance.Status, start, end time.Time) maintenance.Order {
	return maintenance.Order{
		ID:                      id,
		VehicleID:               vehicleID,
		Status:                  status,
		StartDate:               start,
		EstimatedCompletionDate: end,
	}
}

func testSchedule(id, vehicleID, driverID string, status schedule.Status, start, end time.Time) schedule.VehicleSchedule {
	return schedule.VehicleSchedule{
		ID:        id,
		VehicleID: vehicleID,
		DriverID:  driverID,
		Status:    status,
		StartDate: start,
		EndDate:   end,
	}
}

// findUpdate 按目标（kind, id）找第一条更新。
func findUpdate(updates []Update, kind, id string) (Update, bool) {
	for _, u := range updates {
		if u.Kind == kind && u.ID == id {
			return u, true
		}
	}
	return Update{}, false
}

// findApplied 按目标（kind, id）在落库记录里找第一条更新。
func findApplied(applied []AppliedUpdate, kind, id string) (Update, bool) {
	for _, a := range applied {
		if a.Kind == kind && a.ID == id {
			return a.Update, true
		}
	}
	return Update{}, false
}
