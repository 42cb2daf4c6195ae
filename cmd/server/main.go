package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/social-api/adapters/event"
	httpAdapter "github.com/khoahotran/social-api/adapters/http"
	"github.com/khoahotran/social-api/adapters/media_storage"
	"github.com/khoahotran/social-api/adapters/persistence"
	"github.com/khoahotran/social-api/internal/application/service"
	followUC "github.com/khoahotran/social-api/internal/application/usecase/follow"
	postUC "github.com/khoahotran/social-api/internal/application/usecase/post"
	profileUC "github.com/khoahotran/social-api/internal/application/usecase/profile"
	"github.com/khoahotran/social-api/internal/config"
	"github.com/khoahotran/social-api/internal/domain/user"
	"github.com/khoahotran/social-api/pkg/auth"
	"github.com/khoahotran/social-api/pkg/logger"
	"github.com/khoahotran/social-api/pkg/tracing"
)

const (
	serviceName     = "social-api"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, zap.String("service", serviceName))
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("Server stopped with error", err)
	}
	appLogger.Info("Server stopped")
}

func run(cfg config.Config, appLogger logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg, appLogger, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Error("Tracer shutdown failed", err)
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := persistence.RunMigrations(cfg.DB.MigrationsPath, cfg.DB.DSN, appLogger); err != nil {
			return err
		}
	}

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	// Repositories
	var userRepo user.Repository = persistence.NewPostgresUserRepo(dbPool)
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		userRepo = persistence.NewCachedUserRepo(userRepo, redisClient, cfg.Redis.UserCacheTTL, appLogger)
	} else {
		appLogger.Info("Redis not configured, user lookups are not cached")
	}
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	followRepo := persistence.NewPostgresFollowRepo(dbPool)
	postRepo := persistence.NewPostgresPostRepo(dbPool)

	// Services
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			return err
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		appLogger.Warn("Kafka brokers not configured, domain events are dropped")
		publisher = event.NewNopPublisher(appLogger)
	}

	var (
		uploader service.Uploader
		mediaFS  http.FileSystem
	)
	switch cfg.Media.Provider {
	case "cloudinary":
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			return err
		}
	default:
		localStore, err := media_storage.NewLocalStore(cfg.Media.LocalRoot, cfg.Media.PublicBaseURL, appLogger)
		if err != nil {
			return err
		}
		uploader = localStore
		mediaFS = localStore.FileSystem()
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan, cfg.Auth.Issuer)

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, userRepo, uploader, appLogger)
	followUseCase := followUC.NewFollowUseCase(followRepo, userRepo, publisher, appLogger)
	createPostUseCase := postUC.NewCreatePostUseCase(postRepo, userRepo, publisher, uploader, appLogger)
	listFeedUseCase := postUC.NewListFeedUseCase(postRepo)
	getPostUseCase := postUC.NewGetPostUseCase(postRepo)
	updatePostUseCase := postUC.NewUpdatePostUseCase(postRepo, publisher, uploader, appLogger)
	deletePostUseCase := postUC.NewDeletePostUseCase(postRepo, publisher, appLogger)
	listByHashtagUseCase := postUC.NewListByHashtagUseCase(postRepo)
	rssUseCase := postUC.NewRSSUseCase(postRepo, cfg.App.BaseURL, appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Logger:         appLogger,
		JWTService:     jwtSvc,
		ProfileHandler: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		FollowHandler:  httpAdapter.NewFollowHandler(followUseCase),
		PostHandler: httpAdapter.NewPostHandler(
			createPostUseCase,
			listFeedUseCase,
			getPostUseCase,
			updatePostUseCase,
			deletePostUseCase,
			listByHashtagUseCase,
		),
		RSSHandler:  httpAdapter.NewRSSHandler(rssUseCase, appLogger),
		CORSOrigins: cfg.App.CORSOrigins,
		MediaFS:     mediaFS,
		HealthCheck: dbPool.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
