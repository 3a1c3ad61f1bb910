package like

import (
	"context"

	"github.com/gofrs/uuid"
)

// LikeRepository stores likes. Like and Unlike report whether a row changed.
type LikeRepository interface {
	Like(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	Unlike(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	CountByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}
