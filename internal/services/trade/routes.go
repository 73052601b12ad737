package trade

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// SetupRoutes настраивает маршруты обменов: формы и JSON API
func (s *TradeService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	// Формы главной страницы
	app.Post("/ofrecer-trueque/:id", func(c fiber.Ctx) error {
		return s.HandleOffer(c, c.Params("id"))
	}, authMiddleware)

	app.Post("/aceptar-trueque/:id", func(c fiber.Ctx) error {
		return s.HandleRespond(c, c.Params("id"), models.DecisionAccept)
	}, authMiddleware)

	app.Post("/rechazar-trueque/:id", func(c fiber.Ctx) error {
		return s.HandleRespond(c, c.Params("id"), models.DecisionReject)
	}, authMiddleware)

	// Группа для API обменов
	api := app.Group("/api/trades", authMiddleware)

	// Маршрут для создания предложения обмена
	api.Post("/", s.CreateTrade)

	// Маршрут для получения списка предложений обмена
	api.Get("/", s.GetMyTrades)

	// Маршрут для обновления статуса предложения обмена
	api.Put("/:id/status", s.UpdateTradeStatus)
}
