package reconcile

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
)

// Store 通用记录存储：按（表名, id）写入部分字段。
type Store interface {
	UpdateFields(ctx context.Context, kind, id string, fields map[string]any) error
}

// GormStore 基于 GORM 的 Store 实现。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) UpdateFields(ctx context.Context, kind, id string, fields map[string]any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store db is nil")
	}
	if len(fields) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Table(kind).Where("id = ?", id).Updates(fields).Error
}

// Applier 把一轮对账算出的更新逐条落库。
// 每条更新是独立的工作单元：单条失败记日志（带 reason）、
// 标记到报告里，不中断其余更新。
type Applier struct {
	store Store
	log   logger.Logger
}

func NewApplier(store Store, log logger.Logger) *Applier {
	return &Applier{store: store, log: log}
}

// Apply 逐条持久化并返回全部尝试过的更新（含失败的），供调用方审计部分成功。
func (a *Applier) Apply(ctx context.Context, updates []Update) []AppliedUpdate {
	applied := make([]AppliedUpdate, 0, len(updates))
	for _, u := range updates {
		entry := AppliedUpdate{Update: u}
		if a == nil || a.store == nil {
			entry.Error = "applier store is nil"
		} else if err := a.store.UpdateFields(ctx, u.Kind, u.ID, u.Fields); err != nil {
			entry.Error = err.Error()
			warnf(a.log, "failed to apply update %s/%s (%s): %v", u.Kind, u.ID, u.Reason, err)
		}
		applied = append(applied, entry)
	}
	return applied
}
