package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/contactdesk/contactdesk/config"
	"github.com/contactdesk/contactdesk/internal/handler"
	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/contactdesk/contactdesk/internal/repository"
	"github.com/contactdesk/contactdesk/internal/router"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/contactdesk/contactdesk/pkg/database"
	"github.com/contactdesk/contactdesk/pkg/imghost"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/contactdesk/contactdesk/pkg/mailer"
	"github.com/contactdesk/contactdesk/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config.App.Environment); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	// Database
	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db); err != nil {
		// Seed data may already exist
		logger.GetLogger().Error("Failed to seed database", zap.Error(err))
	} else {
		logger.GetLogger().Info("Database seeded successfully")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Redis session cache
	redisClient, err := redis.NewClient(redis.Config{
		Addr:         fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
		Password:     config.Redis.Password,
		DB:           config.Redis.Database,
		PoolSize:     config.Redis.PoolSize,
		MinIdleConns: config.Redis.MinIdleConns,
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolTimeout:  config.Redis.PoolTimeout,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Background email delivery
	smtp := mailer.New(mailer.Config{
		Host:     config.Mail.Host,
		Port:     config.Mail.Port,
		Username: config.Mail.Username,
		Password: config.Mail.Password,
		From:     config.Mail.From,
	})
	dispatcher := mailer.NewDispatcher(smtp, config.Mail.Workers, config.Mail.QueueSize, logger.GetLogger())

	// Image host client
	imageHost := imghost.NewClient(imghost.Config{
		CloudName: config.ImageHost.CloudName,
		APIKey:    config.ImageHost.APIKey,
		APISecret: config.ImageHost.APISecret,
		Folder:    config.ImageHost.Folder,
		Timeout:   config.ImageHost.Timeout,
	}, logger.GetLogger())

	// Services
	tokenService, err := service.NewTokenService(config.JWT)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize token service", zap.Error(err))
	}
	hasher := service.NewPasswordHasher()
	sessions := service.NewSessionCache(redisClient, config.Redis.SessionTTL)
	notifier := service.NewEmailNotifier(dispatcher, config.App.BaseURL)

	authService := service.NewAuthService(userRepo, hasher, tokenService, sessions, notifier)
	userService := service.NewUserService(userRepo, imageHost, sessions)
	contactService := service.NewContactService(contactRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	contactHandler := handler.NewContactHandler(contactService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	jwtMiddleware := middleware.NewJWTMiddleware(authService)

	r := router.NewRouter(
		authHandler,
		userHandler,
		contactHandler,
		healthHandler,

		jwtMiddleware,
		config,
	).SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: r,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop accepting requests before draining the mail queue so no handler
	// enqueues against a closing dispatcher.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().Warn("Server did not shut down cleanly", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.GetLogger().Warn("Mail dispatcher did not drain in time", zap.Error(err))
	}
}
