package notification

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes настраивает маршруты для API уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Get("/api/notificaciones", s.GetNotifications, authMiddleware)
	app.Post("/api/notificaciones/marcar", s.MarkAsRead, authMiddleware)
}
