package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/swapplace-api/internal/api"
)

// SetupRoutes настраивает маршруты чатов. sendLimiter ограничивает частоту
// отправки сообщений и может быть nil.
func (s *ChatService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler, sendLimiter fiber.Handler) {
	send := []fiber.Handler{authMiddleware}
	if sendLimiter != nil {
		send = append(send, sendLimiter)
	}

	// Страницы чатов
	app.Get("/chats", s.GetChats, authMiddleware)
	app.Get("/chat/:id", s.GetChatDetail, authMiddleware)
	app.Post("/chat/:id/reportar", s.ReportChat, authMiddleware)
	app.Post("/chat/:id/calificar", s.RateChat, authMiddleware)

	// Опрос сообщений
	app.Post("/api/chat/:id/send", s.SendMessage, send...)
	app.Add([]string{fiber.MethodGet, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete},
		"/api/chat/:id/send", api.MethodNotAllowed)
	app.Get("/api/chat/:id/messages", s.GetChatMessages, authMiddleware)

	// Группа для API чатов
	chats := app.Group("/api/chats", authMiddleware)
	chats.Get("/", s.GetChats)
	chats.Get("/:id/messages", s.GetChatMessages)
	chats.Post("/:id/messages", s.SendMessage, send[1:]...)
}
