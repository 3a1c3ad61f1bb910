package postapp

import (
	"context"
	"fmt"
	"time"

	"socialfeed/internal/core/fanoutqueue"
	postEntity "socialfeed/internal/core/post"
	eventPort "socialfeed/internal/ports/event"
	fanoutPort "socialfeed/internal/ports/fanoutqueue"
	likePort "socialfeed/internal/ports/like"
	postPort "socialfeed/internal/ports/post"
	timelinePort "socialfeed/internal/ports/timeline"
	"socialfeed/internal/util"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// DefaultPublishTimeout bounds how long a write waits on the event broker.
const DefaultPublishTimeout = 2 * time.Second

// PostService holds the feed, post creation and like logic.
// TimelineCache and Publisher are optional.
type PostService struct {
	PostRepository   postPort.PostRepository
	LikeRepository   likePort.LikeRepository
	FanoutRepository fanoutPort.FanoutRepository
	TimelineCache    timelinePort.TimelineCache
	Publisher        eventPort.Publisher
	PublishTimeout   time.Duration
	Clock            util.Clock
	Logger           *zap.Logger
}

func NewPostService(
	postRepo postPort.PostRepository,
	likeRepo likePort.LikeRepository,
	fanoutRepo fanoutPort.FanoutRepository,
	timelineCache timelinePort.TimelineCache,
	publisher eventPort.Publisher,
	clock util.Clock,
	logger *zap.Logger,
) *PostService {
	if clock == nil {
		clock = util.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostService{
		PostRepository:   postRepo,
		LikeRepository:   likeRepo,
		FanoutRepository: fanoutRepo,
		TimelineCache:    timelineCache,
		Publisher:        publisher,
		PublishTimeout:   DefaultPublishTimeout,
		Clock:            clock,
		Logger:           logger,
	}
}

// GetVisiblePostIDs returns the ids of posts written by viewerID or by users
// viewerID follows, newest first. It never fails just because nothing is visible.
func (s *PostService) GetVisiblePostIDs(ctx context.Context, viewerID string) ([]string, error) {
	viewer, err := uuid.FromString(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid viewerID: %w", err)
	}

	if s.TimelineCache != nil {
		ids, ok, err := s.TimelineCache.Get(ctx, viewerID)
		if err != nil {
			s.Logger.Warn("Timeline cache read failed", zap.String("viewerID", viewerID), zap.Error(err))
		} else if ok {
			return ids, nil
		}
	}

	found, err := s.PostRepository.FindVisibleIDs(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("find visible posts: %w", err)
	}

	ids := make([]string, 0, len(found))
	for _, id := range found {
		ids = append(ids, id.String())
	}

	if s.TimelineCache != nil && len(ids) > 0 {
		if err := s.TimelineCache.Set(ctx, viewerID, ids); err != nil {
			s.Logger.Warn("Timeline cache write failed", zap.String("viewerID", viewerID), zap.Error(err))
		}
	}
	return ids, nil
}

// GetPostsByIDs hydrates ids into view objects in the same order. Any id that
// does not name an existing post fails the whole call with ErrPostNotFound.
func (s *PostService) GetPostsByIDs(ctx context.Context, ids []string, viewerID string) ([]*postPort.PostDTO, error) {
	if len(ids) == 0 {
		return []*postPort.PostDTO{}, nil
	}
	viewer, err := uuid.FromString(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid viewerID: %w", err)
	}

	postIDs := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		pid, err := uuid.FromString(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", postEntity.ErrPostNotFound, id)
		}
		postIDs = append(postIDs, pid)
	}

	posts, err := s.PostRepository.FindByIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	byID := make(map[uuid.UUID]*postEntity.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	for _, pid := range postIDs {
		if _, ok := byID[pid]; !ok {
			return nil, fmt.Errorf("%w: %s", postEntity.ErrPostNotFound, pid)
		}
	}

	counts, err := s.LikeRepository.CountByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	liked, err := s.LikeRepository.LikedPostIDs(ctx, viewer, postIDs)
	if err != nil {
		return nil, fmt.Errorf("load viewer likes: %w", err)
	}

	views := make([]*postPort.PostDTO, 0, len(postIDs))
	for _, pid := range postIDs {
		views = append(views, toDTO(byID[pid], counts[pid], liked[pid]))
	}
	return views, nil
}

// GetFeed resolves the visible ids and hydrates the [start, start+limit) window.
// A limit <= 0 returns everything from start.
func (s *PostService) GetFeed(ctx context.Context, viewerID string, start, limit int) ([]*postPort.PostDTO, error) {
	ids, err := s.GetVisiblePostIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.GetPostsByIDs(ctx, page(ids, start, limit), viewerID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID string) (*postPort.PostDTO, error) {
	views, err := s.GetPostsByIDs(ctx, []string{postID}, viewerID)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CreatePost stores a new post and returns its id. Content validation is the
// caller's job; a post without text and media is accepted here.
func (s *PostService) CreatePost(ctx context.Context, authorID string, text *string, media *postPort.MediaDTO) (string, error) {
	uid, err := uuid.FromString(authorID)
	if err != nil {
		return "", fmt.Errorf("invalid authorID: %w", err)
	}

	p := &postEntity.Post{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uid,
		Text:      text,
		CreatedAt: s.Clock.NowUtc(),
	}
	if media != nil {
		mediaType := postEntity.MediaType(media.Type)
		mediaURL := media.URL
		p.MediaType = &mediaType
		p.MediaURL = &mediaURL
	}

	created, err := s.PostRepository.Create(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to create post: %w", err)
	}
	postID := created.ID.String()
	s.Logger.Info("Created post", zap.String("postID", postID), zap.String("userID", authorID))

	if s.TimelineCache != nil {
		if err := s.TimelineCache.Invalidate(ctx, authorID); err != nil {
			s.Logger.Warn("Could not invalidate author timeline", zap.String("userID", authorID), zap.Error(err))
		}

		fq := &fanoutqueue.FanoutQueue{
			ID:     uuid.Must(uuid.NewV4()),
			PostID: created.ID,
			UserID: created.UserID,
			Status: fanoutqueue.StatusPending,
		}
		if _, err := s.FanoutRepository.Create(ctx, fq); err != nil {
			s.Logger.Warn("Could not add to fanout queue", zap.String("postID", postID), zap.Error(err))
		}
	}

	s.publish(ctx, eventPort.TypePostCreated, postID, authorID)
	return postID, nil
}

// Like records that userID likes postID. Liking twice is a no-op.
func (s *PostService) Like(ctx context.Context, userID, postID string) error {
	uid, pid, err := s.resolveLikeTarget(ctx, userID, postID)
	if err != nil {
		return err
	}
	created, err := s.LikeRepository.Like(ctx, uid, pid)
	if err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	if created {
		s.publish(ctx, eventPort.TypePostLiked, postID, userID)
	}
	return nil
}

// Unlike removes the like of userID on postID. Removing a missing like is a no-op.
func (s *PostService) Unlike(ctx context.Context, userID, postID string) error {
	uid, pid, err := s.resolveLikeTarget(ctx, userID, postID)
	if err != nil {
		return err
	}
	removed, err := s.LikeRepository.Unlike(ctx, uid, pid)
	if err != nil {
		return fmt.Errorf("unlike post: %w", err)
	}
	if removed {
		s.publish(ctx, eventPort.TypePostUnliked, postID, userID)
	}
	return nil
}

func (s *PostService) resolveLikeTarget(ctx context.Context, userID, postID string) (uuid.UUID, uuid.UUID, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid userID: %w", err)
	}
	pid, err := uuid.FromString(postID)
	if err != nil {
		return uuid.Nil, uuid.Nil, postEntity.ErrPostNotFound
	}
	exists, err := s.PostRepository.Exists(ctx, pid)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("check post: %w", err)
	}
	if !exists {
		return uuid.Nil, uuid.Nil, postEntity.ErrPostNotFound
	}
	return uid, pid, nil
}

func (s *PostService) publish(ctx context.Context, eventType, postID, userID string) {
	if s.Publisher == nil {
		return
	}
	ev := eventPort.Event{
		Type:       eventType,
		PostID:     postID,
		UserID:     userID,
		OccurredAt: s.Clock.NowUtc(),
	}
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		s.Logger.Warn("Could not publish event", zap.String("type", eventType), zap.String("postID", postID), zap.Error(err))
	}
}

func page(ids []string, start, limit int) []string {
	if start < 0 {
		start = 0
	}
	if start >= len(ids) {
		return nil
	}
	ids = ids[start:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

func toDTO(p *postEntity.Post, likes int64, liked bool) *postPort.PostDTO {
	dto := &postPort.PostDTO{
		ID:         p.ID.String(),
		Text:       p.Text,
		CreateTime: p.CreatedAt,
		Likes:      likes,
		Liked:      liked,
		Author: postPort.AuthorDTO{
			ID:        p.UserID.String(),
			Firstname: p.User.Firstname,
			Lastname:  p.User.Lastname,
			Avatar:    p.User.Avatar,
		},
	}
	if p.MediaType != nil && p.MediaURL != nil {
		dto.Media = &postPort.MediaDTO{
			URL:  *p.MediaURL,
			Type: string(*p.MediaType),
		}
	}
	return dto
}
