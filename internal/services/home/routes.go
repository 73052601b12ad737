package home

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes регистрирует главную страницу
func (s *HomeService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	app.Get("/", s.GetHome, authMiddleware)
	app.Post("/", s.PostHome, authMiddleware)
}
