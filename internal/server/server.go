// Package server собирает приложение Fiber из сервисов.
package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/cache"
	"github.com/rajivgeraev/swapplace-api/internal/config"
	"github.com/rajivgeraev/swapplace-api/internal/events"
	"github.com/rajivgeraev/swapplace-api/internal/metrics"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
	"github.com/rajivgeraev/swapplace-api/internal/services/auth"
	"github.com/rajivgeraev/swapplace-api/internal/services/catalog"
	"github.com/rajivgeraev/swapplace-api/internal/services/chat"
	"github.com/rajivgeraev/swapplace-api/internal/services/cloudinary"
	"github.com/rajivgeraev/swapplace-api/internal/services/home"
	"github.com/rajivgeraev/swapplace-api/internal/services/notification"
	"github.com/rajivgeraev/swapplace-api/internal/services/trade"
	"github.com/rajivgeraev/swapplace-api/internal/utils"
)

// Deps - зависимости приложения. Cloudinary может быть nil, тогда
// загрузка изображений отключена.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Store       repository.Store
	Publisher   events.Publisher
	SearchCache cache.SearchCache
	Cloudinary  *cloudinary.CloudinaryService
}

// Server - приложение Fiber вместе с сервисами, нужными фоновым задачам
type Server struct {
	App           *fiber.App
	Notifications *notification.NotificationService
}

// New создает приложение и регистрирует все маршруты
func New(deps Deps) *Server {
	cfg := deps.Config
	logger := deps.Logger

	app := fiber.New(fiber.Config{
		AppName:      "SwapPlace API",
		ErrorHandler: api.ErrorHandler(logger),
		BodyLimit:    10 * 1024 * 1024,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(logger, deps.Metrics))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	var images cloudinary.ImageStore = cloudinary.Disabled{}
	if deps.Cloudinary != nil {
		images = deps.Cloudinary
	}

	// Создаём сервисы
	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewAuthService(cfg, deps.Store, jwtService, logger)
	catalogService := catalog.NewCatalogService(deps.Store, images, deps.SearchCache, logger)
	tradeService := trade.NewTradeService(deps.Store, deps.Publisher, deps.Metrics, logger)
	chatService := chat.NewChatService(deps.Store, deps.Publisher, deps.Metrics, cfg.Location, logger)
	notificationService := notification.NewNotificationService(deps.Store, logger)
	homeService := home.NewHomeService(catalogService, tradeService, chatService, notificationService, logger)

	// Настраиваем middleware для аутентификации
	authMiddleware := middleware.AuthMiddleware(jwtService)
	sendLimiter := middleware.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateBurst)

	// Служебные маршруты
	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Регистрируем маршруты
	authService.SetupRoutes(app, authMiddleware)
	homeService.SetupRoutes(app, authMiddleware)
	catalogService.SetupRoutes(app, authMiddleware)
	tradeService.SetupRoutes(app, authMiddleware)
	chatService.SetupRoutes(app, authMiddleware, sendLimiter.Handler())
	notificationService.SetupRoutes(app, authMiddleware)
	if deps.Cloudinary != nil {
		deps.Cloudinary.SetupRoutes(app, authMiddleware)
	}

	return &Server{
		App:           app,
		Notifications: notificationService,
	}
}
