package reconcile

import (
	"fmt"
	"time"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

// ReconcileMaintenanceOrders 对全量维保单做一轮日期驱动的状态推进：
//
//   - scheduled 且 StartDate <= today         -> active
//   - active    且 today > 预计完成日期        -> completed
//
// 每次流转同时产出车辆侧的连带更新。日期为零值/不可解析时视为
// “未到流转时机”，保持原状；快照里找不到对应车辆时记一条日志并
// 跳过该记录，继续处理其余记录。
// 函数只读快照、只写返回值，today 由调用方显式传入。
func ReconcileMaintenanceOrders(snap *Snapshot, today time.Time, log logger.Logger) []Update {
	var updates []Update
	if snap == nil {
		return updates
	}

	for i := range snap.Orders {
		o := &snap.Orders[i]
		switch o.Status {
		case maintenance.StatusScheduled:
			if !daterange.OnOrBefore(o.StartDate, today) {
				continue
			}
			v, ok := snap.Vehicle(o.VehicleID)
			if !ok {
				warnf(log, "maintenance order %s references unknown vehicle %s, skipped", o.ID, o.VehicleID)
				continue
			}

			updates = append(updates, Update{
				Kind:   maintenance.Table,
				ID:     o.ID,
				Fields: map[string]any{"status": maintenance.StatusActive},
				Reason: fmt.Sprintf("maintenance order %s reached start date", o.ID),
			})

			// 维保无条件抢占：状态置为 maintenance，司机分配清空，
			// 不管车辆当前被哪条排班占用
			fields := map[string]any{}
			if v.Status != vehicle.StatusMaintenance {
				fields["status"] = vehicle.StatusMaintenance
			}
			if v.AssignedDriverID != nil {
				fields["assigned_driver_id"] = nil
			}
			if len(fields) > 0 {
				updates = append(updates, Update{
					Kind:   vehicle.Table,
					ID:     v.ID,
					Fields: fields,
					Reason: fmt.Sprintf("vehicle %s preempted by maintenance order %s", v.ID, o.ID),
				})
			}

		case maintenance.StatusActive:
			if !daterange.After(today, o.EstimatedCompletionDate) {
				continue
			}
			v, ok := snap.Vehicle(o.VehicleID)
			if !ok {
				warnf(log, "maintenance order %s references unknown vehicle %s, skipped", o.ID, o.VehicleID)
				continue
			}

			updates = append(updates, Update{
				Kind:   maintenance.Table,
				ID:     o.ID,
				Fields: map[string]any{"status": maintenance.StatusCompleted},
				Reason: fmt.Sprintf("maintenance order %s passed estimated completion date", o.ID),
			})

			// 本单即将完结，维保优先级不再复查（同车还有别的未完结维保单
			// 属于前置校验被绕过的脏数据，这里不做特殊处理），
			// 只按在途排班重推：有 active 排班则接管，否则回到空闲
			status, driverID := ResolveVehicleState(o.VehicleID, o.ID, nil, snap.Schedules)

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
					Reason: fmt.Sprintf("vehicle %s released by maintenance order %s", v.ID, o.ID),
				})
			}
		}
	}
	return updates
}

func warnf(log logger.Logger, format string, args ...interface{}) {
	if log != nil {
		log.Warnf(format, args...)
	}
}
