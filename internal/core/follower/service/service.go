package followerapp

import (
	"context"
	"errors"
	"fmt"

	followerEntity "socialfeed/internal/core/follower"
	userEntity "socialfeed/internal/core/user"
	followerPort "socialfeed/internal/ports/follower"
	timelinePort "socialfeed/internal/ports/timeline"
	userPort "socialfeed/internal/ports/user"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type FollowerService struct {
	FollowerRepository followerPort.FollowerRepository
	UserRepository     userPort.UserRepository
	TimelineCache      timelinePort.TimelineCache // optional
	Logger             *zap.Logger
}

func NewFollowerService(
	repo followerPort.FollowerRepository,
	userRepo userPort.UserRepository,
	timelineCache timelinePort.TimelineCache,
	logger *zap.Logger,
) *FollowerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowerService{
		FollowerRepository: repo,
		UserRepository:     userRepo,
		TimelineCache:      timelineCache,
		Logger:             logger,
	}
}

// FollowUser makes followerID follow followeeID. The follower's cached
// timeline is dropped so the followee's posts show up on the next read.
func (s *FollowerService) FollowUser(ctx context.Context, followerID, followeeID string) error {
	followerUUID, err := uuid.FromString(followerID)
	if err != nil {
		return fmt.Errorf("invalid followerID: %w", err)
	}
	followeeUUID, err := uuid.FromString(followeeID)
	if err != nil {
		return userEntity.ErrUserNotFound
	}
	if followerUUID == followeeUUID {
		s.Logger.Warn("Cannot follow yourself", zap.String("userID", followerUUID.String()))
		return followerEntity.ErrSelfFollow
	}
	// Canonical forms from here on; the store compares ids as strings.
	followerID, followeeID = followerUUID.String(), followeeUUID.String()

	if _, err := s.UserRepository.FindByID(ctx, followeeID); err != nil {
		return err
	}

	isFollowing, err := s.FollowerRepository.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("check follow: %w", err)
	}
	if isFollowing {
		return followerEntity.ErrAlreadyFollowing
	}

	f := &followerEntity.Follower{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     followeeUUID,
		FollowerID: followerUUID,
	}
	if _, err := s.FollowerRepository.FollowUser(ctx, f); err != nil {
		if errors.Is(err, followerEntity.ErrAlreadyFollowing) {
			return err
		}
		return fmt.Errorf("follow user: %w", err)
	}

	s.invalidate(ctx, followerID)
	return nil
}

func (s *FollowerService) UnfollowUser(ctx context.Context, followerID, followeeID string) error {
	followerUUID, err := uuid.FromString(followerID)
	if err != nil {
		return fmt.Errorf("invalid followerID: %w", err)
	}
	followeeUUID, err := uuid.FromString(followeeID)
	if err != nil {
		return followerEntity.ErrNotFollowing
	}
	followerID = followerUUID.String()

	removed, err := s.FollowerRepository.UnfollowUser(ctx, followerID, followeeUUID.String())
	if err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	if !removed {
		return followerEntity.ErrNotFollowing
	}

	s.invalidate(ctx, followerID)
	return nil
}

func (s *FollowerService) GetFollowersByUserID(ctx context.Context, userID string) ([]*followerPort.FollowerDTO, error) {
	followers, err := s.FollowerRepository.GetFollowersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(followers), nil
}

func (s *FollowerService) GetFollowingByUserID(ctx context.Context, userID string) ([]*followerPort.FollowerDTO, error) {
	following, err := s.FollowerRepository.GetFollowingByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(following), nil
}

func (s *FollowerService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.FollowerRepository.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowerService) invalidate(ctx context.Context, viewerID string) {
	if s.TimelineCache == nil {
		return
	}
	if err := s.TimelineCache.Invalidate(ctx, viewerID); err != nil {
		s.Logger.Warn("Could not invalidate timeline", zap.String("userID", viewerID), zap.Error(err))
	}
}

// toDTOs never returns nil so the JSON body is [] rather than null.
func toDTOs(edges []*followerEntity.Follower) []*followerPort.FollowerDTO {
	dtos := make([]*followerPort.FollowerDTO, 0, len(edges))
	for _, f := range edges {
		dtos = append(dtos, &followerPort.FollowerDTO{
			ID:         f.ID.String(),
			UserID:     f.UserID.String(),
			FollowerID: f.FollowerID.String(),
		})
	}
	return dtos
}
