package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbilling "github.com/namjai/backend/internal/application/billing"
	appnotification "github.com/namjai/backend/internal/application/notification"
	"github.com/namjai/backend/internal/domain/notification"
	"github.com/namjai/backend/internal/infrastructure/config"
	"github.com/namjai/backend/internal/infrastructure/logger"
	infranotification "github.com/namjai/backend/internal/infrastructure/notification"
	"github.com/namjai/backend/internal/infrastructure/persistence"
	"github.com/namjai/backend/internal/infrastructure/scheduler"
	"github.com/namjai/backend/internal/interfaces/http/handler"
	"github.com/namjai/backend/internal/interfaces/http/middleware"
	"github.com/namjai/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Namjai Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	billRepo := persistence.NewGormBillRepository(db.DB)
	officerDirectory := persistence.NewGormOfficerDirectory(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)

	// Initialize application services
	billService := appbilling.NewBillService(billRepo, log)
	escalationRunner := appbilling.NewEscalationRunner(billRepo, officerDirectory, log)

	// SMS gateway: Twilio when credentials are present, log-only otherwise so
	// development environments never send real messages.
	var gateway notification.Gateway
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		gateway, err = infranotification.NewTwilioGateway(cfg.Twilio, log)
		if err != nil {
			log.Fatal("Failed to initialize Twilio gateway", zap.Error(err))
		}
		log.Info("Twilio gateway initialized", zap.String("from", cfg.Twilio.FromNumber))
	} else {
		gateway = infranotification.NewLogGateway(log)
		log.Warn("Twilio credentials not configured, using log-only SMS gateway")
	}

	campaignService := appnotification.NewCampaignService(contactRepo, gateway, cfg.Twilio.SendTimeout, log)

	// Fire-marker guard: Redis keeps multi-replica deployments from firing a
	// campaign twice on the same day.
	var fireGuard infranotification.FireGuard = infranotification.AlwaysFireGuard{}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, campaign dedup disabled", zap.Error(err))
	} else {
		fireGuard = infranotification.NewRedisFireGuard(redisClient, log)
		log.Info("Redis connected, campaign dedup enabled")
	}
	pingCancel()
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	// Notification scheduler fires campaigns at the configured wall-clock time
	notifyScheduler := scheduler.NewNotificationScheduler(
		scheduler.NotificationSchedulerConfig{
			Enabled:    cfg.Scheduler.NotifyEnabled,
			FireHour:   cfg.Scheduler.FireHour,
			FireMinute: cfg.Scheduler.FireMinute,
		},
		appnotification.DefaultCampaigns(),
		campaignService,
		fireGuard,
		log,
	)
	if cfg.Scheduler.NotifyEnabled {
		if err := notifyScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start notification scheduler", zap.Error(err))
		}
		log.Info("Notification scheduler started",
			zap.Int("fire_hour", cfg.Scheduler.FireHour),
			zap.Int("fire_minute", cfg.Scheduler.FireMinute),
		)
	}

	// Escalation sweep backstops officer-read evaluation for zones nobody opens
	escalationSweep := scheduler.NewEscalationSweep(
		scheduler.EscalationSweepConfig{
			Enabled:  cfg.Scheduler.SweepEnabled,
			Interval: cfg.Scheduler.SweepInterval,
		},
		escalationRunner,
		log,
	)
	if cfg.Scheduler.SweepEnabled {
		if err := escalationSweep.Start(context.Background()); err != nil {
			log.Fatal("Failed to start escalation sweep", zap.Error(err))
		}
		log.Info("Escalation sweep started", zap.Duration("interval", cfg.Scheduler.SweepInterval))
	}

	// Initialize HTTP handlers
	billHandler := handler.NewBillHandler(billService, escalationRunner)
	systemHandler := handler.NewSystemHandler(db, notifyScheduler, escalationSweep)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())

	// Health endpoints outside API versioning
	systemHandler.RegisterRootRoutes(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(billHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Scheduler.NotifyEnabled {
		if err := notifyScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping notification scheduler", zap.Error(err))
		}
	}
	if cfg.Scheduler.SweepEnabled {
		if err := escalationSweep.Stop(ctx); err != nil {
			log.Error("Error stopping escalation sweep", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
