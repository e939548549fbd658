package reconcile

import (
	"fmt"

	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// DeriveVehicleUpdates 把合并结果里的车辆侧更新替换为终局推导结果。
//
// 两个 reconciler 各自对着同一份快照计算车辆副作用，同一天内维保单
// 与排班同时流转时，后求值的一方会基于过期的车辆状态覆盖先求值的一方
// （比如排班激活把刚被维保抢占的车辆又写回 active）。这里先把本轮的
// 记录级流转套在快照副本上，再对每辆受影响的车辆按优先级推导一次
// 最终状态与司机分配，车辆结果从此与 reconciler 的求值顺序无关。
//
// 司机分配在维保态下的归属规则：
//   - 本轮有维保单激活：抢占，清空分配
//   - 维保早已在途、本轮只有排班激活：登记该排班司机的占用
//   - 其余（排班完结等）：清空
func DeriveVehicleUpdates(snap *Snapshot, merged []Update) []Update {
	if snap == nil || len(merged) == 0 {
		return merged
	}

	// 本轮流转后的记录状态
	postOrders := make([]maintenance.Order, len(snap.Orders))
	copy(postOrders, snap.Orders)
	orderIdx := make(map[string]int, len(postOrders))
	for i := range postOrders {
		orderIdx[postOrders[i].ID] = i
	}
	postSchedules := make([]schedule.VehicleSchedule, len(snap.Schedules))
	copy(postSchedules, snap.Schedules)
	scheduleIdx := make(map[string]int, len(postSchedules))
	for i := range postSchedules {
		scheduleIdx[postSchedules[i].ID] = i
	}

	var affected []string
	seen := make(map[string]bool)
	touch := func(vehicleID string) {
		if vehicleID == "" || seen[vehicleID] {
			return
		}
		seen[vehicleID] = true
		affected = append(affected, vehicleID)
	}

	orderActivated := make(map[string]bool)
	claimedDriver := make(map[string]string)
	reasons := make(map[string]string)

	out := make([]Update, 0, len(merged))
	for _, u := range merged {
		switch u.Kind {
		case maintenance.Table:
			if i, ok := orderIdx[u.ID]; ok {
				if s, ok := u.Fields["status"].(maintenance.Status); ok {
					postOrders[i].Status = s
					if s == maintenance.StatusActive {
						orderActivated[postOrders[i].VehicleID] = true
					}
					touch(postOrders[i].VehicleID)
				}
			}
			out = append(out, u)
		case schedule.Table:
			if i, ok := scheduleIdx[u.ID]; ok {
				if s, ok := u.Fields["status"].(schedule.Status); ok {
					postSchedules[i].Status = s
					if s == schedule.StatusActive {
						if _, ok := claimedDriver[postSchedules[i].VehicleID]; !ok {
							claimedDriver[postSchedules[i].VehicleID] = postSchedules[i].DriverID
						}
					}
					touch(postSchedules[i].VehicleID)
				}
			}
			out = append(out, u)
		case vehicle.Table:
			// 原有车辆副作用只保留 reason，字段统一重推
			touch(u.ID)
			reasons[u.ID] = u.Reason
		default:
			out = append(out, u)
		}
	}

	for _, id := range affected {
		v, ok := snap.Vehicle(id)
		if !ok {
			continue
		}
		status, drv := ResolveVehicleState(id, "", postOrders, postSchedules)
		if status == vehicle.StatusMaintenance && !orderActivated[id] {
			if d, ok := claimedDriver[id]; ok {
				drv = d
			}
		}

		fields := map[string]any{}
		if v.Status != status {
			fields["status"] = status
		}
		if drv == "" {
			if v.AssignedDriverID != nil {
				fields["assigned_driver_id"] = nil
			}
		} else if v.Assigned() != drv {
			fields["assigned_driver_id"] = drv
		}
		if len(fields) == 0 {
			continue
		}
		reason := reasons[id]
		if reason == "" {
			reason = fmt.Sprintf("vehicle %s re-derived after record transitions", id)
		}
		out = append(out, Update{Kind: vehicle.Table, ID: id, Fields: fields, Reason: reason})
	}
	return out
}
