package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gig-marketplace-api/internal/config"
	"gig-marketplace-api/internal/controller"
	"gig-marketplace-api/internal/gateway/paypal"
	"gig-marketplace-api/internal/notify"
	"gig-marketplace-api/internal/repo"
	"gig-marketplace-api/internal/service"
	"gig-marketplace-api/internal/storage"
	"gig-marketplace-api/pkg/http_server"
	"gig-marketplace-api/pkg/logger"
	"gig-marketplace-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/redis/go-redis/v9"
)

const closeTimeout = 10 * time.Second

func runMigrations(pg *postgres.Postgres, sourceUrl string, databaseName string) error {
	driver, err := pgmigrate.WithInstance(pg.Database, &pgmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		return err
	}

	migrations, err := migrate.NewWithDatabaseInstance(sourceUrl, databaseName, driver)
	if err != nil {
		return err
	}

	if err := migrations.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Get().Info("no change made by migration scripts")
			return nil
		}

		return err
	}

	return nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func newStorage(cfg *config.Config) (service.FileStorage, error) {
	if !cfg.StorageEnabled() {
		logger.Get().Warn("S3 storage is not configured, avatar uploads are disabled")
		return nil, nil
	}

	s3, err := storage.NewS3Storage(storage.Config{
		Region:          cfg.AWSRegion,
		AccessKeyId:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.AWSS3Bucket,
	})
	if err != nil {
		return nil, err
	}

	return s3, nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	handler := echo.New()
	handler.HideBanner = true
	handler.Debug = !cfg.IsProduction()
	handler.HTTPErrorHandler = controller.HTTPErrorHandler

	handler.Use(middleware.Recover())
	handler.Use(controller.RequestID())
	handler.Use(controller.RequestLogger())
	handler.Use(middleware.CORS())

	return handler
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.Init(cfg.Environment)
	log := logger.Get()
	ctx := context.Background()

	log.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(ctx, cfg.PostgresConn)
	if err != nil {
		logger.Fatal("error occurred while connecting to db", "error", err)
	}
	defer postgresDB.Close()

	log.Info("Running migrations...")
	if err := runMigrations(postgresDB, cfg.MigrationsPath, cfg.DatabaseName); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}

	log.Info("Connecting redis...")
	redisClient, err := connectRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("error occurred while connecting to redis", "error", err)
	}
	defer redisClient.Close()

	dispatcher := notify.NewDispatcher(redisClient, cfg.NotificationChannel, cfg.NotificationQueueSize)
	dispatcher.Start()

	gateway := paypal.NewClient(ctx, paypal.Config{
		ClientId:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BaseUrl:      cfg.PayPalBaseURL,
		Currency:     cfg.PayPalCurrency,
	})

	fileStorage, err := newStorage(cfg)
	if err != nil {
		logger.Fatal("error occurred while configuring storage", "error", err)
	}

	services := service.NewServices(service.Dependencies{
		Repos:     repo.NewRepositories(postgresDB),
		Gateway:   gateway,
		Notifier:  dispatcher,
		Storage:   fileStorage,
		ReturnUrl: cfg.PaymentReturnURL,
		CancelUrl: cfg.PaymentCancelURL,
	})

	log.Info("Setup routes...")
	handler := newEcho(cfg)
	routesCtx, stopRoutes := context.WithCancel(ctx)
	defer stopRoutes()
	controller.SetupRoutesHandlers(routesCtx, handler, services, controller.RouterConfig{
		JWTSecret:      []byte(cfg.JWTSecret),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	log.Info("Starting server...", "address", cfg.ServerAddress)
	httpServer := http_server.New(handler, cfg.ServerAddress)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("Got signal: " + s.String())
	case err := <-httpServer.Notify():
		log.Error("server stopped", "error", err)
	}

	log.Info("Shutting down...")
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()
	if err := dispatcher.Close(closeCtx); err != nil {
		log.Warn("notifications left unpublished", "error", err)
	}

	log.Info("Successful shutdown")
}
