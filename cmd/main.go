package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/morphcute/kim-dispo-vape-shop/internal/auth"
	"github.com/morphcute/kim-dispo-vape-shop/internal/handler"
	"github.com/morphcute/kim-dispo-vape-shop/internal/payments"
	"github.com/morphcute/kim-dispo-vape-shop/internal/repositories"
	"github.com/morphcute/kim-dispo-vape-shop/internal/router"
	"github.com/morphcute/kim-dispo-vape-shop/internal/service"
	"github.com/morphcute/kim-dispo-vape-shop/internal/storage"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/database"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/envconfig"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/flags"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()
	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting Kim Dispo Vape Shop backend",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	db, err := database.NewConnection(envconfig.LoadDatabaseConfig(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := db.HealthCheck(); err != nil {
		appLogger.Error("Database health check failed", "error", err)
	}

	if err := db.Migrate(); err != nil {
		appLogger.Fatal("Database migration failed", "error", err)
	}
	appLogger.Info("Database schema is up to date")

	// Admin sessions live in Redis so they survive restarts. Without
	// Redis the admin UI falls back to sending the shared token.
	var sessionStore auth.SessionStore
	if redisAddr := envconfig.GetEnv("REDIS_ADDR", ""); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: envconfig.GetEnv("REDIS_PASSWORD", ""),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Warn("Redis unreachable, admin sessions disabled", "error", err)
		} else {
			sessionStore = auth.NewRedisSessionStore(redisClient)
			appLogger.Info("Redis session store connected", "addr", redisAddr)
		}
		cancel()
	}

	orderRepo := repositories.NewOrderRepository(appLogger, db)
	categoryRepo := repositories.NewCategoryRepository(appLogger, db)
	brandRepo := repositories.NewBrandRepository(appLogger, db)
	flavorRepo := repositories.NewFlavorRepository(appLogger, db)

	paymongoClient := payments.NewPayMongoClient(
		envconfig.GetEnv("PAYMONGO_SECRET_KEY", ""),
		envconfig.GetEnv("APP_URL", "http://localhost:3000"),
		appLogger,
	)
	if paymongoClient == nil {
		appLogger.Warn("PAYMONGO_SECRET_KEY not set, e-wallet payments disabled")
	}
	paymentService := payments.NewService(paymongoClient, appLogger)

	storageClient := storage.NewSupabaseClient(
		envconfig.GetEnv("SUPABASE_URL", ""),
		envconfig.GetEnv("SUPABASE_SERVICE_KEY", ""),
		appLogger,
	)
	if storageClient == nil {
		appLogger.Warn("Supabase storage not configured, poster uploads disabled")
	}

	authService := auth.NewService(envconfig.GetEnv("ADMIN_TOKEN", ""), sessionStore, appLogger)

	orderService := service.NewOrderService(orderRepo, flavorRepo, appLogger)
	catalogService := service.NewCatalogService(categoryRepo, brandRepo, flavorRepo, appLogger)
	overviewService := service.NewOverviewService(categoryRepo, flavorRepo, orderRepo, appLogger)

	handlers := router.Handlers{
		Order:   handler.NewOrderHandler(orderService, paymentService, appLogger),
		Catalog: handler.NewCatalogHandler(catalogService, appLogger),
		Admin:   handler.NewAdminHandler(overviewService, catalogService, authService, paymentService, storageClient, appLogger),
	}

	mux := router.New(handlers, authService, appLogger)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}
