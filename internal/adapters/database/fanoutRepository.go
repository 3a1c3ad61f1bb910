package database

import (
	"context"
	"time"

	"socialfeed/internal/core/fanoutqueue"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type FanoutRepositoryDatabase struct {
	db *gorm.DB
}

func NewFanoutRepositoryDatabase(db *gorm.DB) *FanoutRepositoryDatabase {
	return &FanoutRepositoryDatabase{db: db}
}

func (repo *FanoutRepositoryDatabase) Create(ctx context.Context, fanout *fanoutqueue.FanoutQueue) (*fanoutqueue.FanoutQueue, error) {
	if err := repo.db.WithContext(ctx).Create(fanout).Error; err != nil {
		return nil, err
	}
	return fanout, nil
}

func (repo *FanoutRepositoryDatabase) GetPendingPosts(ctx context.Context, limit int64) ([]*fanoutqueue.FanoutQueue, error) {
	var fanouts []*fanoutqueue.FanoutQueue
	if err := repo.db.WithContext(ctx).
		Where("status = ?", fanoutqueue.StatusPending).
		Order("created_at").
		Limit(int(limit)).
		Find(&fanouts).Error; err != nil {
		return nil, err
	}
	return fanouts, nil
}

func (repo *FanoutRepositoryDatabase) MarkDone(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Model(&fanoutqueue.FanoutQueue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       fanoutqueue.StatusDone,
			"processed_at": time.Now(),
		}).Error
}
