package database

import (
	"context"
	"errors"

	"socialfeed/internal/core/follower"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowerRepositoryDatabase implements FollowerRepository on GORM.
type FollowerRepositoryDatabase struct {
	db *gorm.DB
}

func NewFollowerRepositoryDatabase(db *gorm.DB) *FollowerRepositoryDatabase {
	return &FollowerRepositoryDatabase{db: db}
}

func (repo *FollowerRepositoryDatabase) FollowUser(ctx context.Context, f *follower.Follower) (*follower.Follower, error) {
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		// The unique (follower_id, user_id) index settles concurrent follows.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, follower.ErrAlreadyFollowing
		}
		return nil, err
	}
	return f, nil
}

func (repo *FollowerRepositoryDatabase) UnfollowUser(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := repo.db.WithContext(ctx).
		Where("follower_id = ? AND user_id = ?", followerID, followeeID).
		Delete(&follower.Follower{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (repo *FollowerRepositoryDatabase) GetFollowersByUserID(ctx context.Context, userID string) ([]*follower.Follower, error) {
	var followers []*follower.Follower
	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&followers).Error; err != nil {
		return nil, err
	}
	return followers, nil
}

func (repo *FollowerRepositoryDatabase) GetFollowingByUserID(ctx context.Context, followerID string) ([]*follower.Follower, error) {
	var following []*follower.Follower
	if err := repo.db.WithContext(ctx).Where("follower_id = ?", followerID).Order("created_at DESC").Find(&following).Error; err != nil {
		return nil, err
	}
	return following, nil
}

func (repo *FollowerRepositoryDatabase) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&follower.Follower{}).Where("follower_id = ? AND user_id = ?", followerID, followeeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
