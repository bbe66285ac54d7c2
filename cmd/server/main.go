package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theia-io/drivebetter-sub000/internal/config"
	handlers "github.com/theia-io/drivebetter-sub000/internal/handlers/shared"
	"github.com/theia-io/drivebetter-sub000/internal/middleware"
	"github.com/theia-io/drivebetter-sub000/internal/repositories/mongodb"
	"github.com/theia-io/drivebetter-sub000/internal/services"
	"github.com/theia-io/drivebetter-sub000/pkg/cache"
	"github.com/theia-io/drivebetter-sub000/pkg/database"
	"github.com/theia-io/drivebetter-sub000/pkg/logger"
	"github.com/theia-io/drivebetter-sub000/pkg/push"
	"github.com/theia-io/drivebetter-sub000/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer redisCache.Close()

	// Push provider is optional. Without credentials the share fan-out is
	// silently skipped.
	var pushProvider push.PushProvider
	if cfg.Push.Enabled && cfg.Push.FCM.Credentials != "" {
		fcm, err := push.NewFCMProvider(cfg.Push.FCM.Credentials)
		if err != nil {
			log.WithError(err).Warn("failed to initialize FCM, push disabled")
		} else {
			pushProvider = fcm
		}
	}

	// Repositories
	rideRepo := mongodb.NewRideRepository(db.Database)
	shareRepo := mongodb.NewShareRepository(db.Database, redisCache)
	groupRepo := mongodb.NewGroupRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)

	// Services
	aclService := services.NewACLService(groupRepo)
	notificationService := services.NewNotificationService(pushProvider, log)
	shareService := services.NewShareService(shareRepo, rideRepo, groupRepo, userRepo, aclService, notificationService, cfg.Share.BaseURL, log)
	claimService := services.NewClaimService(shareRepo, rideRepo, userRepo, aclService, log)
	rideService := services.NewRideService(rideRepo)

	// Handlers
	shareHandler := handlers.NewShareHandler(shareService, claimService)
	rideHandler := handlers.NewRideHandler(claimService, rideService)

	limiter := middleware.NewRateLimiter(redisCache, int64(cfg.Share.ClaimRateLimit), cfg.Share.RateWindow)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Fatal("invalid trusted proxies")
		}
	}

	v1 := router.Group("/api/v1")
	{
		routes.SetupShareRoutes(v1, shareHandler, cfg.Security.JWTSecret, limiter)
		routes.SetupRideRoutes(v1, rideHandler, cfg.Security.JWTSecret, limiter)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["mongodb"] = err.Error()
		}
		if err := redisCache.Ping(context.Background()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}
		c.JSON(status, health)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.Infof("starting server on port %d", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
