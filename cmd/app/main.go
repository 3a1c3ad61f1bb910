package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	dbadapter "socialfeed/internal/adapters/database"
	"socialfeed/internal/adapters/httpapi"
	kafkaadapter "socialfeed/internal/adapters/kafka"
	redisadapter "socialfeed/internal/adapters/redis"
	storageadapter "socialfeed/internal/adapters/storage"
	"socialfeed/internal/config"
	followerapp "socialfeed/internal/core/follower/service"
	mediaapp "socialfeed/internal/core/media/service"
	postapp "socialfeed/internal/core/post/service"
	userapp "socialfeed/internal/core/user/service"
	eventPort "socialfeed/internal/ports/event"
	mediaPort "socialfeed/internal/ports/media"
	timelinePort "socialfeed/internal/ports/timeline"
	"socialfeed/internal/util"
	"socialfeed/internal/workers"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.InitLogger()
	defer func() { _ = logger.Sync() }()
	cfg := config.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := config.InitTracer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := dbadapter.AutoMigrate(db); err != nil {
			logger.Fatal("Error during migrations", zap.Error(err))
		}
		logger.Info("Database migrations completed")
	}

	redisClient, err := config.InitRedis(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect redis", zap.Error(err))
	}

	// Optional dependencies stay nil interfaces when not configured.
	var timelineCache timelinePort.TimelineCache
	if redisClient != nil {
		timelineCache = redisadapter.NewTimelineCacheRedis(redisClient, cfg.TimelineTTL)
	}

	var publisher eventPort.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafkaadapter.NewEventPublisherKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Publishing post events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	var mediaStorage mediaPort.MediaStorage
	if cfg.MinioEndpoint != "" {
		mediaStorage = initMediaStorage(ctx, cfg, logger)
	}

	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	postRepo := dbadapter.NewPostRepositoryDatabase(db)
	likeRepo := dbadapter.NewLikeRepositoryDatabase(db)
	fanoutRepo := dbadapter.NewFanoutRepositoryDatabase(db)
	followerRepo := dbadapter.NewFollowerRepositoryDatabase(db)

	userSvc := userapp.NewUserService(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger)
	postSvc := postapp.NewPostService(postRepo, likeRepo, fanoutRepo, timelineCache, publisher, util.NewRealClock(), logger)
	followerSvc := followerapp.NewFollowerService(followerRepo, userRepo, timelineCache, logger)
	mediaSvc := mediaapp.NewMediaService(mediaStorage, logger)

	r := httpapi.SetupRoutes(userSvc, postSvc, followerSvc, mediaSvc, httpapi.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})

	workerDone := make(chan struct{})
	if timelineCache != nil {
		fanoutWorker := workers.NewFanoutWorker(fanoutRepo, followerRepo, timelineCache, cfg.BatchSize, cfg.FanoutInterval, logger)
		go func() {
			defer close(workerDone)
			fanoutWorker.Run(ctx)
		}()
	} else {
		close(workerDone)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           otelhttp.NewHandler(r, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		logger.Info("App is running", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	<-workerDone
	closeResources(logger, db, redisClient, publisher)
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown failed", zap.Error(err))
	}
}

func initMediaStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) mediaPort.MediaStorage {
	s, err := storageadapter.NewMinioStorage(storageadapter.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
		PublicURL: cfg.MediaPublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to create media storage client", zap.Error(err))
	}
	if err := s.EnsureBucket(ctx); err != nil {
		logger.Fatal("Failed to prepare media bucket", zap.String("bucket", cfg.MinioBucket), zap.Error(err))
	}
	logger.Info("Media storage ready", zap.String("endpoint", cfg.MinioEndpoint), zap.String("bucket", cfg.MinioBucket))
	return s
}

// closeResources closes the event writer, Redis and the database pool.
func closeResources(logger *zap.Logger, db *gorm.DB, redisClient *redis.Client, publisher eventPort.Publisher) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Error closing event publisher", zap.Error(err))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}

	if err := config.CloseDB(db); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	}
}
