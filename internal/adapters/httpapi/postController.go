package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	postEntity "socialfeed/internal/core/post"
	postPort "socialfeed/internal/ports/post"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type PostController struct{ pc PostUseCase }

func NewPostController(pc PostUseCase) *PostController { return &PostController{pc: pc} }

// GetFeed answers with the viewer's feed, optionally windowed by start and limit.
func (ctl *PostController) GetFeed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil || start < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	posts, err := ctl.pc.GetFeed(c.Request.Context(), userID, start, limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch posts"})
		return
	}
	if posts == nil {
		posts = []*postPort.PostDTO{}
	}
	c.JSON(http.StatusOK, posts)
}

type createPostRequest struct {
	Text  *string            `json:"text"`
	Media *postPort.MediaDTO `json:"media"`
}

// validate drops blank text before checking that the post carries content.
func (req *createPostRequest) validate() error {
	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		req.Text = nil
	}
	if req.Text == nil && req.Media == nil {
		return errors.New("post needs text or media")
	}
	if req.Media != nil {
		if !postEntity.MediaType(req.Media.Type).Valid() {
			return errors.New("media type must be image or video")
		}
		if strings.TrimSpace(req.Media.URL) == "" {
			return errors.New("media url is required")
		}
	}
	return nil
}

func (ctl *PostController) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID, err := ctl.pc.CreatePost(c.Request.Context(), userID, req.Text, req.Media)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}
	c.Header("Location", "/posts/"+postID)
	c.Status(http.StatusCreated)
}

func (ctl *PostController) GetPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	p, err := ctl.pc.GetPost(c.Request.Context(), postID, userID)
	if err != nil {
		writePostError(c, err, "could not fetch post")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctl *PostController) LikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := ctl.pc.Like(c.Request.Context(), userID, postID); err != nil {
		writePostError(c, err, "could not like post")
		return
	}
	c.Status(http.StatusOK)
}

func (ctl *PostController) UnlikePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := ctl.pc.Unlike(c.Request.Context(), userID, postID); err != nil {
		writePostError(c, err, "could not unlike post")
		return
	}
	c.Status(http.StatusOK)
}

func postIDParam(c *gin.Context) (string, bool) {
	postID := c.Param("postId")
	if _, err := uuid.FromString(postID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid postId"})
		return "", false
	}
	return postID, true
}

func writePostError(c *gin.Context, err error, msg string) {
	if errors.Is(err, postEntity.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": postEntity.ErrPostNotFound.Error()})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
