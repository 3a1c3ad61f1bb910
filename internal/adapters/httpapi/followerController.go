package httpapi

import (
	"errors"
	"net/http"

	followerEntity "socialfeed/internal/core/follower"
	userEntity "socialfeed/internal/core/user"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type FollowerController struct{ fc FollowerUseCase }

func NewFollowerController(fc FollowerUseCase) *FollowerController {
	return &FollowerController{fc: fc}
}

type followRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// bindFollowRequest returns the caller and the target of a follow edge.
func bindFollowRequest(c *gin.Context) (string, string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return "", "", false
	}
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return "", "", false
	}
	targetID, err := uuid.FromString(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return "", "", false
	}
	return userID, targetID.String(), true
}

func (ctl *FollowerController) FollowUser(c *gin.Context) {
	userID, targetID, ok := bindFollowRequest(c)
	if !ok {
		return
	}

	err := ctl.fc.FollowUser(c.Request.Context(), userID, targetID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "successfully followed user"})
	case errors.Is(err, followerEntity.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, userEntity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, followerEntity.ErrAlreadyFollowing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not follow user"})
	}
}

func (ctl *FollowerController) UnfollowUser(c *gin.Context) {
	userID, targetID, ok := bindFollowRequest(c)
	if !ok {
		return
	}

	err := ctl.fc.UnfollowUser(c.Request.Context(), userID, targetID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "successfully unfollowed user"})
	case errors.Is(err, followerEntity.ErrNotFollowing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow user"})
	}
}

func (ctl *FollowerController) GetFollowersByUserID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	followers, err := ctl.fc.GetFollowersByUserID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get followers"})
		return
	}
	c.JSON(http.StatusOK, followers)
}

func (ctl *FollowerController) GetFollowingByUserID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	following, err := ctl.fc.GetFollowingByUserID(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get following"})
		return
	}
	c.JSON(http.StatusOK, following)
}
