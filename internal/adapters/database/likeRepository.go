package database

import (
	"context"

	"socialfeed/internal/core/like"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepositoryDatabase struct {
	db *gorm.DB
}

func NewLikeRepositoryDatabase(db *gorm.DB) *LikeRepositoryDatabase {
	return &LikeRepositoryDatabase{db: db}
}

// Like relies on the (user_id, post_id) primary key: a second insert for the
// same pair affects no rows.
func (repo *LikeRepositoryDatabase) Like(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	l := &like.Like{UserID: userID, PostID: postID}
	res := repo.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (repo *LikeRepositoryDatabase) Unlike(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	res := repo.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&like.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (repo *LikeRepositoryDatabase) CountByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uuid.UUID
		Likes  int64
	}
	if err := repo.db.WithContext(ctx).Model(&like.Like{}).
		Select("post_id, COUNT(*) AS likes").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.PostID] = r.Likes
	}
	return counts, nil
}

func (repo *LikeRepositoryDatabase) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	if err := repo.db.WithContext(ctx).Model(&like.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
