package chat

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// MessageView - сообщение в формате ответа API чата
type MessageView struct {
	ID        uuid.UUID `json:"id"`
	Author    string    `json:"autor"`
	Content   string    `json:"contenido"`
	Timestamp string    `json:"fecha"`
}

func (s *ChatService) toView(m models.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Author:    m.AuthorUsername,
		Content:   m.Content,
		Timestamp: s.FormatTimestamp(m.CreatedAt),
	}
}

func (s *ChatService) toViews(messages []models.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, s.toView(m))
	}
	return views
}

func chatID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, models.NotFound("Chat no encontrado")
	}
	return id, nil
}

// SendMessage отправляет сообщение в чат
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := chatID(c)
	if err != nil {
		return err
	}

	var requestData struct {
		Text string `json:"texto"`
	}
	if err := c.Bind().JSON(&requestData); err != nil {
		return models.Validation("Formato JSON inválido")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	message, err := s.Send(ctx, actor, id, requestData.Text)
	if err != nil {
		return err
	}

	return api.OK(c, fiber.Map{"mensaje": s.toView(*message)})
}

// GetChatMessages возвращает сообщения конкретного чата
func (s *ChatService) GetChatMessages(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := chatID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	messages, err := s.Fetch(ctx, actor, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"mensajes": s.toViews(messages)})
}

// GetChats возвращает список чатов пользователя
func (s *ChatService) GetChats(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	chats, err := s.List(ctx, actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"chats": chats,
		"count": len(chats),
	})
}

// GetChatDetail возвращает чат, его сообщения и список чатов пользователя
func (s *ChatService) GetChatDetail(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := chatID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	detail, err := s.Detail(ctx, actor, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"chat":     detail.Chat,
		"mensajes": s.toViews(detail.Messages),
		"chats":    detail.Chats,
	})
}

// ReportChat принимает жалобу на чат
func (s *ChatService) ReportChat(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := chatID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.Report(ctx, actor, id)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"mensaje": msg})
}

// ratingValue - оценка из тела запроса: JSON-число, JSON-строка или поле формы
type ratingValue string

func (r *ratingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*r = ratingValue(raw)
		return nil
	}
	*r = ratingValue(data)
	return nil
}

func (r *ratingValue) UnmarshalText(text []byte) error {
	*r = ratingValue(text)
	return nil
}

// RateChat принимает оценку собеседника
func (s *ChatService) RateChat(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := chatID(c)
	if err != nil {
		return err
	}

	var requestData struct {
		Rating ratingValue `json:"rating" form:"rating"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&requestData); err != nil {
			return models.Validation("Rating inválido")
		}
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	msg, err := s.Rate(ctx, actor, id, string(requestData.Rating))
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"mensaje": msg})
}
