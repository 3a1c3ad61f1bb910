package fanout

import (
	"context"

	"socialfeed/internal/core/fanoutqueue"

	"github.com/gofrs/uuid"
)

type FanoutRepository interface {
	Create(ctx context.Context, fanout *fanoutqueue.FanoutQueue) (*fanoutqueue.FanoutQueue, error)
	GetPendingPosts(ctx context.Context, limit int64) ([]*fanoutqueue.FanoutQueue, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
}
