package timeline

import "context"

// TimelineCache keeps the ordered visible post ids of a viewer.
type TimelineCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context, viewerID string) (postIDs []string, ok bool, err error)
	Set(ctx context.Context, viewerID string, postIDs []string) error
	Invalidate(ctx context.Context, viewerIDs ...string) error
}
