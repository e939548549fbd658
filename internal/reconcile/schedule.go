package reconcile

import (
	"fmt"
	"time"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// ReconcileVehicleSchedules 对全量排班做一轮日期驱动的状态推进：
//
//   - scheduled 且 StartDate <= today <= EndDate -> active（两端都校验）
//   - active    且 today > EndDate               -> completed
//
// 激活时总是登记司机占用（即使车辆在维保中，也先记下司机分配，
// 但不把状态从 maintenance 改成 active）；完结时按
// “维保 > 其他在途排班 > 空闲”优先级重推车辆状态。
func ReconcileVehicleSchedules(snap *Snapshot, today time.Time, log logger.Logger) []Update {
	var updates []Update
	if snap == nil {
		return updates
	}

	for i := range snap.Schedules {
		s := &snap.Schedules[i]
		switch s.Status {
		case schedule.StatusScheduled:
			if !daterange.Contains(s.StartDate, s.EndDate, today) {
				continue
			}
			v, ok := snap.Vehicle(s.VehicleID)
			if !ok {
				warnf(log, "schedule %s references unknown vehicle %s, skipped", s.ID, s.VehicleID)
				continue
			}
			if _, ok := snap.Driver(s.DriverID); !ok {
				warnf(log, "schedule %s references unknown driver %s, skipped", s.ID, s.DriverID)
				continue
			}

			updates = append(updates, Update{
				Kind:   schedule.Table,
				ID:     s.ID,
				Fields: map[string]any{"status": schedule.StatusActive},
				Reason: fmt.Sprintf("schedule %s entered its activation window", s.ID),
			})

			fields := map[string]any{}
			if v.Assigned() != s.DriverID {
				fields["assigned_driver_id"] = s.DriverID
			}
			// 维保中的车辆只登记司机占用，状态仍由维保把持
			if v.Status != vehicle.StatusMaintenance && v.Status != vehicle.StatusActive {
				fields["status"] = vehicle.StatusActive
			}
			if len(fields) > 0 {
				updates = append(updates, Update{
					Kind:   vehicle.Table,
					ID:     v.ID,
					Fields: fields,
					Reason: fmt.Sprintf("vehicle %s claimed by schedule %s (driver %s)", v.ID, s.ID, s.DriverID),
				})
			}

		case schedule.StatusActive:
			if !daterange.After(today, s.EndDate) {
				continue
			}
			v, ok := snap.Vehicle(s.VehicleID)
			if !ok {
				warnf(log, "schedule %s references unknown vehicle %s, skipped", s.ID, s.VehicleID)
				continue
			}

			updates = append(updates, Update{
				Kind:   schedule.Table,
				ID:     s.ID,
				Fields: map[string]any{"status": schedule.StatusCompleted},
				Reason: fmt.Sprintf("schedule %s passed its end date", s.ID),
			})

			// 默认清空司机，再按优先级重推；
			// 其他 active 排班胜出时用它的司机覆盖“清空”
			status, driverID := ResolveVehicleState(s.VehicleID, s.ID, snap.Orders, snap.Schedules)

			fields := map[string]any{}
			if driverID == "" {
				if v.AssignedDriverID != nil {
					fields["assigned_driver_id"] = nil
				}
			} else if v.Assigned() != driverID {
				fields["assigned_driver_id"] = driverID
			}
			if v.Status != status {
				fields["status"] = status
			}
			if len(fields) > 0 {
				updates = append(updates, Update{
					Kind:   vehicle.Table,
					ID:     v.ID,
					Fields: fields,
					Reason: fmt.Sprintf("vehicle %s released by schedule %s", v.ID, s.ID),
				})
			}
		}
	}
	return updates
}
