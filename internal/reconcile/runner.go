package reconcile

import (
	"context"
	"time"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/middleware"
)

// Runner 周期性触发对账的调度器。
// 启动后先立刻跑一轮，然后按 interval 周期触发，直到 ctx 结束。
// 配了 Redis 锁时，抢不到锁的副本直接跳过本轮（引擎自身的互斥锁
// 只覆盖单进程，跨副本去重靠这把咨询锁）。
// 连续失败（通常是数据库不可用）会触发熔断，冷却期内不再发起新的对账。
type Runner struct {
	engine   *Engine
	interval time.Duration
	lock     *RedisLock // 可为 nil：单副本部署不需要
	breaker  *middleware.CircuitBreaker
	log      logger.Logger
}

func NewRunner(engine *Engine, interval time.Duration, lock *RedisLock, log logger.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Runner{
		engine:   engine,
		interval: interval,
		lock:     lock,
		breaker:  middleware.NewCircuitBreaker("reconcile", 3, 2*interval),
		log:      log,
	}
}

// Start 阻塞运行直到 ctx 结束。
func (r *Runner) Start(ctx context.Context) {
	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if r.lock != nil {
		ok, err := r.lock.TryAcquire(ctx)
		if err != nil {
			// Redis 异常时宁可跳过本轮，下个周期再试
			warnf(r.log, "failed to acquire reconcile lock: %v", err)
			return
		}
		if !ok {
			if r.log != nil {
				r.log.Debug("reconcile lock held by another replica, skipping this round")
			}
			return
		}
		defer func() {
			if err := r.lock.Release(ctx); err != nil {
				warnf(r.log, "failed to release reconcile lock: %v", err)
			}
		}()
	}

	err := r.breaker.Call(ctx, func() error {
		_, passErr := r.engine.RunPassNow(ctx)
		return passErr
	})
	if err != nil {
		if r.log != nil {
			r.log.Errorf("reconcile pass failed: %v", err)
			if r.breaker.GetState() == middleware.StateOpen {
				r.log.Warn("reconcile circuit breaker open, passes suspended until cooldown")
			}
		}
	}
}
