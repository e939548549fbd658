package reconcile

import (
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// ResolveVehicleState 按固定优先级推导车辆的正确状态和司机分配：
//
//	维保（任一 scheduled/active 维保单）> 在途排班（任一 active 排班）> 空闲
//
// excludeID 用于排除“正在完结的那条记录”（两类 ID 不会相同，
// 因此同一个参数对两类记录都适用）。
// 返回的 driverID 为空串表示应清空分配。
//
// 同级存在多条记录时（应当被创建时校验阻止的数据状态），
// 取 StartDate 最早、再按 ID 排序的那条，保证多轮之间结果稳定。
func ResolveVehicleState(
	vehicleID, excludeID string,
	orders []maintenance.Order,
	schedules []schedule.VehicleSchedule,
) (vehicle.Status, string) {
	for i := range orders {
		o := &orders[i]
		if o.VehicleID != vehicleID || o.ID == excludeID {
			continue
		}
		if o.Status == maintenance.StatusScheduled || o.Status == maintenance.StatusActive {
			return vehicle.StatusMaintenance, ""
		}
	}

	var best *schedule.VehicleSchedule
	for i := range schedules {
		s := &schedules[i]
		if s.VehicleID != vehicleID || s.ID == excludeID || s.Status != schedule.StatusActive {
			continue
		}
		if best == nil ||
			s.StartDate.Before(best.StartDate) ||
			(s.StartDate.Equal(best.StartDate) && s.ID < best.ID) {
			best = s
		}
	}
	if best != nil {
		return vehicle.StatusActive, best.DriverID
	}

	// scheduled 状态的排班到了开始日期会自行激活，这里不提前占位
	return vehicle.StatusIdle, ""
}
