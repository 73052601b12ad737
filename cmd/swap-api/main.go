package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/cache"
	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/events"
	"github.com/rajivgeraev/swapplace-api/internal/logger"
	"github.com/rajivgeraev/swapplace-api/internal/metrics"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
	"github.com/rajivgeraev/swapplace-api/internal/repository/memory"
	"github.com/rajivgeraev/swapplace-api/internal/repository/postgres"
	"github.com/rajivgeraev/swapplace-api/internal/server"
	"github.com/rajivgeraev/swapplace-api/internal/services/cloudinary"
	"github.com/rajivgeraev/swapplace-api/internal/worker"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("❌ Ошибка при создании логгера: %v", err)
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем хранилище
	var store repository.Store
	switch cfg.Storage {
	case config.StorageMemory:
		appLogger.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		store = memory.NewStore()
	default:
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := db.RunMigrations(migrateCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			appLogger.Fatal("Ошибка при применении миграций", zap.Error(err))
		}

		pool, err := db.Connect(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Ошибка при инициализации базы данных", zap.Error(err))
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	}

	// Кэш поиска
	var searchCache cache.SearchCache = cache.Nop{}
	if cfg.RedisConfig.Addr != "" {
		redisCache, err := cache.NewRedisSearchCache(ctx, &redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		}, cfg.SearchCacheTTL)
		if err != nil {
			appLogger.Warn("Redis недоступен, кэш поиска отключен", zap.Error(err))
		} else {
			defer redisCache.Close()
			searchCache = redisCache
		}
	}

	// События
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL, appLogger)
		if err != nil {
			appLogger.Warn("NATS недоступен, события не публикуются", zap.Error(err))
		} else {
			publisher = natsPublisher
		}
	}
	defer publisher.Close()

	// Изображения
	var cloudinaryService *cloudinary.CloudinaryService
	if cfg.CloudinaryConfig.Enabled() {
		cloudinaryService, err = cloudinary.NewCloudinaryService(cfg.CloudinaryConfig, appLogger)
		if err != nil {
			appLogger.Fatal("Ошибка при инициализации Cloudinary", zap.Error(err))
		}
	} else {
		appLogger.Warn("Cloudinary не настроен, загрузка изображений отключена")
	}

	m := metrics.New()
	srv := server.New(server.Deps{
		Config:      cfg,
		Logger:      appLogger,
		Metrics:     m,
		Store:       store,
		Publisher:   publisher,
		SearchCache: searchCache,
		Cloudinary:  cloudinaryService,
	})

	cleanup := worker.NewNotificationCleanupWorker(srv.Notifications, m, appLogger, cfg.CleanupInterval, cfg.NotificationRetention)
	go cleanup.Start(ctx)

	// Запускаем сервер
	go func() {
		appLogger.Info("✅ SwapPlace API запущен", zap.String("port", cfg.HTTPPort))
		if err := srv.App.Listen(":" + cfg.HTTPPort); err != nil {
			appLogger.Error("Ошибка HTTP сервера", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Получен сигнал остановки, завершаем работу")

	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
}
