package main

import (
	"context"
	"flag"
	"time"

	dbadapter "socialfeed/internal/adapters/database"
	"socialfeed/internal/config"
	followerapp "socialfeed/internal/core/follower/service"
	postapp "socialfeed/internal/core/post/service"
	userapp "socialfeed/internal/core/user/service"
	postPort "socialfeed/internal/ports/post"
	"socialfeed/internal/util"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

const seedPassword = "password"

// seed fills the database with fake users, follow edges, posts and likes.
// Every seeded account logs in with seedPassword.
func main() {
	numUsers := flag.Int("users", 50, "users to create")
	postsPerUser := flag.Int("posts", 10, "posts per user")
	followsPerUser := flag.Int("follows", 10, "users each user follows")
	likesPerUser := flag.Int("likes", 20, "likes per user")
	seed := flag.Int64("seed", time.Now().UnixNano(), "faker seed")
	flag.Parse()

	logger := config.InitLogger()
	defer func() { _ = logger.Sync() }()
	cfg := config.Init()
	gofakeit.Seed(*seed)

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	defer func() { _ = config.CloseDB(db) }()
	if err := dbadapter.AutoMigrate(db); err != nil {
		logger.Fatal("Error during migrations", zap.Error(err))
	}

	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	userSvc := userapp.NewUserService(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger)
	followerSvc := followerapp.NewFollowerService(dbadapter.NewFollowerRepositoryDatabase(db), userRepo, nil, logger)
	postSvc := postapp.NewPostService(
		dbadapter.NewPostRepositoryDatabase(db),
		dbadapter.NewLikeRepositoryDatabase(db),
		dbadapter.NewFanoutRepositoryDatabase(db),
		nil, nil, util.NewRealClock(), logger,
	)

	ctx := context.Background()
	userIDs := createUsers(ctx, logger, userSvc, *numUsers)
	follow(ctx, logger, followerSvc, userIDs, *followsPerUser)
	postIDs := createPosts(ctx, logger, postSvc, userIDs, *postsPerUser)
	like(ctx, logger, postSvc, userIDs, postIDs, *likesPerUser)
	logger.Info("Seeding completed", zap.Int("users", len(userIDs)), zap.Int("posts", len(postIDs)), zap.Int64("seed", *seed))
}

func createUsers(ctx context.Context, logger *zap.Logger, svc *userapp.UserService, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		u, err := svc.RegisterUser(ctx, gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email(), seedPassword,
			gofakeit.ImageURL(128, 128))
		if err != nil {
			logger.Warn("Error creating user", zap.Error(err))
			continue
		}
		ids = append(ids, u.ID)
	}
	logger.Info("Created users", zap.Int("count", len(ids)))
	return ids
}

func follow(ctx context.Context, logger *zap.Logger, svc *followerapp.FollowerService, userIDs []string, perUser int) {
	if len(userIDs) < 2 {
		return
	}
	count := 0
	for _, followerID := range userIDs {
		for i := 0; i < perUser; i++ {
			followeeID := userIDs[gofakeit.Number(0, len(userIDs)-1)]
			if followeeID == followerID {
				continue
			}
			if err := svc.FollowUser(ctx, followerID, followeeID); err != nil {
				continue
			}
			count++
		}
	}
	logger.Info("Created follow edges", zap.Int("count", count))
}

func createPosts(ctx context.Context, logger *zap.Logger, svc *postapp.PostService, userIDs []string, perUser int) []string {
	ids := make([]string, 0, len(userIDs)*perUser)
	for _, uid := range userIDs {
		for p := 0; p < perUser; p++ {
			text := gofakeit.Sentence(gofakeit.Number(3, 20))
			var media *postPort.MediaDTO
			if gofakeit.Number(1, 5) == 1 {
				media = &postPort.MediaDTO{URL: gofakeit.ImageURL(640, 480), Type: "image"}
			}
			id, err := svc.CreatePost(ctx, uid, &text, media)
			if err != nil {
				logger.Warn("Error creating post", zap.String("userID", uid), zap.Error(err))
				continue
			}
			ids = append(ids, id)
		}
	}
	logger.Info("Created posts", zap.Int("count", len(ids)))
	return ids
}

func like(ctx context.Context, logger *zap.Logger, svc *postapp.PostService, userIDs, postIDs []string, perUser int) {
	if len(postIDs) == 0 {
		return
	}
	count := 0
	for _, uid := range userIDs {
		for i := 0; i < perUser; i++ {
			if err := svc.Like(ctx, uid, postIDs[gofakeit.Number(0, len(postIDs)-1)]); err != nil {
				logger.Warn("Error liking post", zap.String("userID", uid), zap.Error(err))
				continue
			}
			count++
		}
	}
	logger.Info("Created likes", zap.Int("count", count))
}
