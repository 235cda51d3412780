package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"scout-platform/config"
	"scout-platform/handlers"
	"scout-platform/metrics"
	"scout-platform/middleware"
	"scout-platform/models"
	"scout-platform/services"
	"scout-platform/utils"
	"scout-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		middleware.InitLogger("info", "scout-platform", config.Hostname())
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	middleware.InitLogger(cfg.LogLevel, "scout-platform", config.Hostname())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordReset{},
		&models.Category{},
		&models.Video{},
		&models.VideoLike{},
		&models.Challenge{},
		&models.ChallengeSubmission{},
		&models.Assessment{},
		&models.AssessmentSubmission{},
		&models.WatchlistEntry{},
		&models.BadgeType{},
		&models.UserBadge{},
		&models.Notification{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var store utils.BlobStore
	if cfg.UsesObjectStorage() {
		store, err = utils.NewS3Store(ctx, utils.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object storage")
		}
		log.Info().Str("bucket", cfg.S3Bucket).Msg("✅ object storage ready")
	} else {
		store, err = utils.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to ensure upload dir")
		}
		log.Warn().Str("dir", cfg.UploadDir).Msg("⚠️ no bucket configured, storing uploads on local disk")
	}

	cache := services.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	notificationService := services.NewNotificationService(db)
	badgeService := services.NewBadgeService(db, notificationService)
	authService := services.NewAuthService(db, cache, services.LogMailer{}, badgeService, cfg.SessionTTL())
	authService.ResetURL = cfg.PasswordResetURL
	categoryService := services.NewCategoryService(db)
	profileService := services.NewProfileService(db, cache, store)
	videoService := services.NewVideoService(db, cache, store, categoryService, notificationService, badgeService, cfg.MaxUploadBytes())
	progressionService := services.NewProgressionService(db)
	challengeService := services.NewChallengeService(db, cache, videoService, categoryService, progressionService, notificationService, badgeService)
	assessmentService := services.NewAssessmentService(db, cache, videoService, categoryService, notificationService, badgeService)
	scoutService := services.NewScoutService(db, cache)

	// 🌱 Seed static content
	if err := categoryService.SeedDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed categories")
	}
	if err := challengeService.SeedDefaults(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed challenges")
	}
	if err := badgeService.SeedBadgeTypes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed badges")
	}
	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to create bootstrap admin")
		}
	}

	sched, err := services.StartScheduler(ctx, authService, progressionService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	statsWorker := workers.NewStatsWorker(db, cache, cfg.StatsInterval())
	statsWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		BodyLimit:             int(cfg.MaxUploadBytes()) + 1024*1024,
		StreamRequestBody:     true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(metrics.Middleware())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Accept-Language, Authorization, X-Requested-With, X-Request-ID, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.Locale(cfg.DefaultLanguage))

	// ✅ Routes
	handlers.SetupHealthRoutes(app, db, cache)
	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupProfileRoutes(app, authService, profileService, badgeService)
	handlers.SetupCategoryRoutes(app, authService, categoryService)
	handlers.SetupAssessmentRoutes(app, authService, assessmentService)
	handlers.SetupChallengeRoutes(app, authService, challengeService)
	handlers.SetupVideoRoutes(app, authService, videoService)
	handlers.SetupScoutRoutes(app, authService, scoutService)
	handlers.SetupNotificationRoutes(app, authService, notificationService)

	if !cfg.UsesObjectStorage() {
		app.Static("/uploads", cfg.UploadDir)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	log.Info().Str("port", cfg.Port).Strs("origins", cfg.Origins()).Msg("✅ server running")

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := sched.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
	<-statsWorker.Done()
}
