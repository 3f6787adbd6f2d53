package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/teenlance/teenlance-backend/internal/config"
	"github.com/teenlance/teenlance-backend/internal/db"
	httpHandlers "github.com/teenlance/teenlance-backend/internal/http/handlers"
	httpRouter "github.com/teenlance/teenlance-backend/internal/http/router"
	"github.com/teenlance/teenlance-backend/internal/logger"
	"github.com/teenlance/teenlance-backend/internal/metrics"
	"github.com/teenlance/teenlance-backend/internal/repository"
	"github.com/teenlance/teenlance-backend/internal/service"
	"github.com/teenlance/teenlance-backend/internal/storage"
	"github.com/teenlance/teenlance-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	metrics.Register()

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Вебсокеты.
	hub := ws.NewHub()
	go hub.Run()

	// Сервисы.
	notifier := service.NewNotifier(notificationRepo, hub)
	gate := service.NewGate()
	ledgerService := service.NewLedgerService(paymentRepo)
	applicationService := service.NewApplicationService(applicationRepo, userRepo, gate, ledgerService, notifier, cfg.PlatformFeePercent)
	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo, notifier)
	notificationService := service.NewNotificationService(notificationRepo)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, service.NewLogCodeSender(), notifier)
	mediaService := service.NewMediaService(mediaRepo, fileStorage)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	applicationHandler := httpHandlers.NewApplicationHandler(applicationService, ledgerService)
	profileHandler := httpHandlers.NewProfileHandler(userService)
	adminHandler := httpHandlers.NewAdminHandler(userService, verificationService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaService, userService)
	verificationHandler := httpHandlers.NewVerificationHandler(verificationService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		applicationHandler,
		profileHandler,
		adminHandler,
		notificationHandler,
		mediaHandler,
		verificationHandler,
		healthHandler,
		wsHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
