package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/daterange"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
)

// Engine 状态对账引擎。
//
// 一轮对账（pass）分三步：一次性加载全量快照；对着快照纯计算出
// 全部待更新（维保单、排班各扫一遍，合并后再对受影响车辆按流转后的
// 记录状态做一次终局推导）；最后统一落库。
// today 始终由调用方传入，引擎内部不读墙钟，保证一轮的结果是
// 输入的确定函数。内部互斥锁保证同进程内不会有两轮并发执行；
// 跨进程部署时需要外部锁（见 Runner 的 Redis 锁）。
type Engine struct {
	loader  Loader
	applier *Applier
	log     logger.Logger

	mu sync.Mutex
}

func NewEngine(loader Loader, store Store, log logger.Logger) *Engine {
	return &Engine{
		loader:  loader,
		applier: NewApplier(store, log),
		log:     log,
	}
}

// PassReport 一轮对账的结果汇总。
type PassReport struct {
	Today    time.Time       `json:"today"`
	Computed int             `json:"computed"` // 合并后的更新条数
	Failed   int             `json:"failed"`   // 落库失败条数
	Applied  []AppliedUpdate `json:"applied"`  // 全部尝试过的更新
}

// RunPass 执行一轮对账。计算阶段对预期内的数据形态从不报错
// （无效日期=不流转、引用缺失=跳过），只有快照加载失败会返回 error；
// 落库的单条失败被隔离在报告里，不会升级为整轮失败。
func (e *Engine) RunPass(ctx context.Context, today time.Time) (*PassReport, error) {
	if e == nil || e.loader == nil {
		return nil, fmt.Errorf("engine not initialized")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	span, ctx := opentracing.StartSpanFromContext(ctx, "reconcile.pass")
	defer span.Finish()
	span.SetTag("today", today.Format("2006-01-02"))

	snap, err := e.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	updates := ReconcileMaintenanceOrders(snap, today, e.log)
	updates = append(updates, ReconcileVehicleSchedules(snap, today, e.log)...)
	merged := DeriveVehicleUpdates(snap, MergeUpdates(updates))

	applied := e.applier.Apply(ctx, merged)

	report := &PassReport{Today: daterange.DayStart(today), Computed: len(merged), Applied: applied}
	for _, a := range applied {
		if !a.OK() {
			report.Failed++
		}
	}

	if e.log != nil {
		e.log.WithFields(map[string]interface{}{
			"today":    report.Today.Format("2006-01-02"),
			"computed": report.Computed,
			"failed":   report.Failed,
		}).Info("reconcile pass finished")
	}
	span.SetTag("updates", report.Computed)
	return report, nil
}

// RunPassNow 以当前自然日执行一轮对账（定时器 / 手动触发入口）。
func (e *Engine) RunPassNow(ctx context.Context) (*PassReport, error) {
	return e.RunPass(ctx, daterange.DayStart(time.Now()))
}
