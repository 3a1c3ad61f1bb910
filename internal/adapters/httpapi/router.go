package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"socialfeed/internal/adapters/httpapi/middleware"
	followerPort "socialfeed/internal/ports/follower"
	mediaPort "socialfeed/internal/ports/media"
	postPort "socialfeed/internal/ports/post"
	userPort "socialfeed/internal/ports/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// UserUseCase is the inbound port used by the user routes.
type UserUseCase interface {
	LoginUser(ctx context.Context, email, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, firstname, lastname, email, password, avatar string) (*userPort.UserDTO, error)
}

type PostUseCase interface {
	GetFeed(ctx context.Context, viewerID string, start, limit int) ([]*postPort.PostDTO, error)
	GetPost(ctx context.Context, postID, viewerID string) (*postPort.PostDTO, error)
	CreatePost(ctx context.Context, authorID string, text *string, media *postPort.MediaDTO) (string, error)
	Like(ctx context.Context, userID, postID string) error
	Unlike(ctx context.Context, userID, postID string) error
}

type FollowerUseCase interface {
	FollowUser(ctx context.Context, followerID, followeeID string) error
	UnfollowUser(ctx context.Context, followerID, followeeID string) error
	GetFollowersByUserID(ctx context.Context, userID string) ([]*followerPort.FollowerDTO, error)
	GetFollowingByUserID(ctx context.Context, userID string) ([]*followerPort.FollowerDTO, error)
}

type MediaUseCase interface {
	UploadMedia(ctx context.Context, ownerID, filename, contentType string, size int64, r io.Reader) (*mediaPort.MediaDTO, error)
}

type RouterConfig struct {
	JWTSecret   []byte
	CORSOrigins []string
	Logger      *zap.Logger
}

// SetupRoutes only wires routes; use cases are injected by the caller.
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	followerUC FollowerUseCase,
	mediaUC MediaUseCase,
	cfg RouterConfig,
) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	uc := NewUserController(userUC)
	pc := NewPostController(postUC)
	fc := NewFollowerController(followerUC)
	mc := NewMediaController(mediaUC)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", uc.RegisterUser)
	r.POST("/login", uc.LoginUser)

	auth := r.Group("/", middleware.JWTAuthMiddleware(cfg.JWTSecret))

	auth.GET("/posts", pc.GetFeed)
	auth.POST("/posts", pc.CreatePost)
	auth.GET("/posts/:postId", pc.GetPost)
	auth.PUT("/posts/:postId/likes", pc.LikePost)
	auth.DELETE("/posts/:postId/likes", pc.UnlikePost)

	auth.POST("/follow", fc.FollowUser)
	auth.POST("/unfollow", fc.UnfollowUser)
	auth.GET("/followers", fc.GetFollowersByUserID)
	auth.GET("/following", fc.GetFollowingByUserID)

	auth.POST("/media", mc.UploadMedia)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// currentUserID reads the id set by the auth middleware and answers 401 when it is absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return "", false
	}
	return userID, true
}
