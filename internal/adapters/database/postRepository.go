package database

import (
	"context"

	"socialfeed/internal/core/follower"
	"socialfeed/internal/core/post"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepositoryDatabase implements PostRepository on GORM.
type PostRepositoryDatabase struct {
	db *gorm.DB
}

func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *PostRepositoryDatabase) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&post.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *PostRepositoryDatabase) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*post.Post, error) {
	var posts []*post.Post
	if len(ids) == 0 {
		return posts, nil
	}
	if err := repo.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FindVisibleIDs treats the viewer as following themselves without storing that edge.
func (repo *PostRepositoryDatabase) FindVisibleIDs(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	db := repo.db.WithContext(ctx)
	followees := db.Model(&follower.Follower{}).Select("user_id").Where("follower_id = ?", viewerID)

	ids := []uuid.UUID{}
	if err := db.Model(&post.Post{}).
		Where("user_id = ? OR user_id IN (?)", viewerID, followees).
		Order("created_at DESC").
		Order("id DESC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
