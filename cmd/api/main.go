package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moptabi/moptabi-backend/internal/config"
	"github.com/moptabi/moptabi-backend/internal/logging"
	"github.com/moptabi/moptabi-backend/internal/media"
	minioRepo "github.com/moptabi/moptabi-backend/internal/repository/minio"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
	"github.com/moptabi/moptabi-backend/internal/repository/postgres"
	"github.com/moptabi/moptabi-backend/internal/service"
	httpTransport "github.com/moptabi/moptabi-backend/internal/transport/http"
	"github.com/moptabi/moptabi-backend/internal/util"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run serves the API until SIGINT or SIGTERM. Startup failures are returned
// after deferred closes have run.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logCfg := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			return fmt.Errorf("logstash writer: %w", err)
		}
		defer writer.Close()
		logCfg.Extra = writer
	}
	logger := logging.New(logCfg)
	slog.SetDefault(logger)

	db, err := postgres.New(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		return err
	}
	defer db.Close()

	if cfg.DatabaseAutoMigrate {
		applied, err := postgres.Migrate(context.Background(), db)
		if err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			return err
		}
		logger.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("files", applied))
	}

	var storage ports.ObjectStorage
	if cfg.StorageEnabled() {
		client, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			logger.Error("init minio client", slog.Any("error", err))
			return err
		}
		store := minioRepo.NewStorage(client, cfg.MinIOPublicURL)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = store.EnsureBucket(ctx, cfg.MinIOBucketTrips)
		cancel()
		if err != nil {
			logger.Error("ensure trip bucket", slog.String("bucket", cfg.MinIOBucketTrips), slog.Any("error", err))
			return err
		}
		storage = store
	} else {
		logger.Warn("object storage disabled, trip image uploads will be rejected")
	}

	var sessions *util.JWTManager
	if cfg.AuthSecret != "" {
		sessions = util.NewJWTManager(cfg.AuthSecret, cfg.SessionTTL)
	}

	userRepo := postgres.NewUserRepo(db)
	spotRepo := postgres.NewSpotRepo(db)
	wishlistRepo := postgres.NewWishlistRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	planRepo := postgres.NewPlanRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)
	txManager := postgres.NewTxManager(db)

	authService := service.NewAuthService(userRepo, sessions, service.AuthConfig{
		GoogleAudience: cfg.GoogleAudience,
		AdminEmails:    cfg.AdminEmails,
		Logger:         logger,
	})
	dashboardService := service.NewDashboardService(userRepo, tripRepo, wishlistRepo, notificationRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, spotRepo, txManager)
	spotService := service.NewSpotService(spotRepo, wishlistRepo)
	tripService := service.NewTripService(
		tripRepo,
		planRepo,
		spotRepo,
		txManager,
		storage,
		media.NewCoverProcessor(cfg.TripImageMaxDimension),
		service.TripConfig{
			ImageBucket:       cfg.MinIOBucketTrips,
			ImageMaxBytes:     cfg.TripImageMaxBytes,
			ImageMaxDimension: cfg.TripImageMaxDimension,
			Logger:            logger,
		},
	)
	planService := service.NewPlanService(planRepo, spotRepo, txManager)
	notificationService := service.NewNotificationService(notificationRepo, txManager, service.NotificationConfig{
		ReadRateScanLimit: cfg.NotificationReadRateScanLimit,
		Logger:            logger,
	})

	e := httpTransport.NewRouter(httpTransport.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		BodyLimit:    "8M",
		Logger:       logger,
	})
	resolver := httpTransport.NewIdentityResolver(authService, cfg.AuthAllowHeaders)

	httpTransport.RegisterAuth(e, resolver, authService, dashboardService)
	httpTransport.RegisterTrips(e, resolver, tripService)
	httpTransport.RegisterPlans(e, resolver, planService)
	httpTransport.RegisterWishlist(e, resolver, wishlistService, spotService)
	httpTransport.RegisterNotifications(e, resolver, notificationService)
	httpTransport.RegisterLimits(e)
	httpTransport.RegisterSwagger(e, cfg.SwaggerSpecPath)

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("http server listening", slog.String("addr", addr), slog.String("env", cfg.AppEnv))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("http server stopped", slog.Any("error", err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
