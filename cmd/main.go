package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/geo_attendance/internal/config"
	v1 "github.com/shenikar/geo_attendance/internal/handler/http/v1"
	"github.com/shenikar/geo_attendance/internal/metrics"
	"github.com/shenikar/geo_attendance/internal/repository"
	"github.com/shenikar/geo_attendance/internal/service"
	"github.com/shenikar/geo_attendance/internal/webhook"
	"github.com/shenikar/geo_attendance/pkg/logger"
	"github.com/shenikar/geo_attendance/pkg/postgres"
	redisclient "github.com/shenikar/geo_attendance/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/geo_attendance/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Geo Attendance API
// @version 1.0
// @description Geofenced, face-verified student attendance service.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the student access token.
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	if err := postgres.Migrate(cfg.DatabaseURL, "file://migrations"); err != nil {
		return err
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// setupRouter собирает gin-движок: CORS, API v1, метрики Prometheus и Swagger UI
func setupRouter(handler *v1.Handler, cfg *config.Config) *gin.Engine {
	router := gin.Default()
	router.Use(v1.CORSMiddleware(cfg.AllowedOrigins))

	handler.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Метрики
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(dbpool)
	geofenceRepo := repository.NewGeofenceRepository(dbpool, redisClient, cfg.GeofenceCacheTTL)
	attendanceRepo := repository.NewAttendanceRepository(dbpool)
	verificationStore := repository.NewVerificationStore(redisClient)

	// Инициализация сервисов
	userService := service.NewUserService(userRepo, log)
	geofenceService := service.NewGeofenceService(geofenceRepo, log)
	attendanceService := service.NewAttendanceService(
		userRepo,
		geofenceService,
		attendanceRepo,
		verificationStore,
		webhookPublisher,
		appMetrics,
		log,
		cfg,
	)

	handler := v1.NewHandler(geofenceService, attendanceService, userService, log, cfg)

	router := setupRouter(handler, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	// Останавливаем воркер вебхуков
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
