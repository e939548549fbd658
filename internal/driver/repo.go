package driver

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, d *Driver) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Driver, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Driver
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Driver, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&Driver{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var drivers []Driver
	if err := r.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&drivers).Error; err != nil {
		return nil, 0, err
	}
	return drivers, total, nil
}

// ListAll 拉取全量司机快照（对账引擎校验排班引用时使用）。
func (r *Repo) ListAll(ctx context.Context) ([]Driver, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var drivers []Driver
	if err := r.db.WithContext(ctx).Order("id").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}
