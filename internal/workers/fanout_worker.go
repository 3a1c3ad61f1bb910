package workers

import (
	"context"
	"time"

	"socialfeed/internal/core/fanoutqueue"
	fanoutPort "socialfeed/internal/ports/fanoutqueue"
	followerPort "socialfeed/internal/ports/follower"
	timelinePort "socialfeed/internal/ports/timeline"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

const defaultBatchSize = 100

// FanoutWorker drains the fanout queue and drops the cached timelines of
// every follower of a new post's author.
type FanoutWorker struct {
	FanoutRepo    fanoutPort.FanoutRepository
	FollowerRepo  followerPort.FollowerRepository
	TimelineCache timelinePort.TimelineCache
	BatchSize     int // queue rows per poll and timelines per invalidation
	Interval      time.Duration
	Logger        *zap.Logger
}

func NewFanoutWorker(
	fanoutRepo fanoutPort.FanoutRepository,
	followerRepo followerPort.FollowerRepository,
	timelineCache timelinePort.TimelineCache,
	batchSize int,
	interval time.Duration,
	logger *zap.Logger,
) *FanoutWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanoutWorker{
		FanoutRepo:    fanoutRepo,
		FollowerRepo:  followerRepo,
		TimelineCache: timelineCache,
		BatchSize:     batchSize,
		Interval:      interval,
		Logger:        logger,
	}
}

// Run polls the queue until ctx is cancelled.
func (w *FanoutWorker) Run(ctx context.Context) {
	w.Logger.Info("Fanout worker started", zap.Int("batchSize", w.BatchSize), zap.Duration("interval", w.Interval))
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.Logger.Error("Error fetching pending posts", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			w.Logger.Info("Fanout worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of pending rows and returns how many it handled.
func (w *FanoutWorker) RunOnce(ctx context.Context) (int, error) {
	pending, err := w.FanoutRepo.GetPendingPosts(ctx, int64(w.BatchSize))
	if err != nil {
		return 0, err
	}
	for _, fq := range pending {
		if ctx.Err() != nil {
			break
		}
		w.processFanout(ctx, fq)
	}
	return len(pending), nil
}

func (w *FanoutWorker) processFanout(ctx context.Context, fq *fanoutqueue.FanoutQueue) {
	if fq == nil || fq.PostID == uuid.Nil || fq.UserID == uuid.Nil {
		w.Logger.Error("Invalid fanout queue record", zap.Any("record", fq))
		if fq != nil && fq.ID != uuid.Nil {
			w.markDone(ctx, fq)
		}
		return
	}

	followers, err := w.FollowerRepo.GetFollowersByUserID(ctx, fq.UserID.String())
	if err != nil {
		w.Logger.Error("Error fetching followers", zap.String("userID", fq.UserID.String()), zap.Error(err))
		return
	}

	followerIDs := make([]string, 0, len(followers))
	for _, f := range followers {
		followerIDs = append(followerIDs, f.FollowerID.String())
	}

	for i := 0; i < len(followerIDs); i += w.BatchSize {
		end := min(i+w.BatchSize, len(followerIDs))
		batch := followerIDs[i:end]
		if err := w.TimelineCache.Invalidate(ctx, batch...); err != nil {
			// Leave the row pending so the next poll retries it.
			w.Logger.Error("Error invalidating timelines", zap.String("postID", fq.PostID.String()), zap.Error(err))
			return
		}
	}

	w.Logger.Debug("Fanned out post",
		zap.String("postID", fq.PostID.String()),
		zap.String("authorID", fq.UserID.String()),
		zap.Int("followers", len(followerIDs)))
	w.markDone(ctx, fq)
}

func (w *FanoutWorker) markDone(ctx context.Context, fq *fanoutqueue.FanoutQueue) {
	if err := w.FanoutRepo.MarkDone(ctx, fq.ID); err != nil {
		w.Logger.Warn("Could not mark fanout_queue done", zap.String("id", fq.ID.String()), zap.Error(err))
	}
}
