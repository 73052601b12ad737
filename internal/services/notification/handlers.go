package notification

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/api"
	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/middleware"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// FeedItem - уведомление в формате ленты
type FeedItem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"titulo"`
	Body       string    `json:"mensaje"`
	Kind       string    `json:"tipo"`
	Link       string    `json:"link"`
	CreatedISO string    `json:"creado_iso"`
	AgeSeconds int64     `json:"edad_segundos"`
}

// ToFeed преобразует уведомления в формат ленты на момент now
func ToFeed(notifications []models.Notification, now time.Time) []FeedItem {
	items := make([]FeedItem, 0, len(notifications))
	for _, n := range notifications {
		age := int64(now.Sub(n.CreatedAt) / time.Second)
		if age < 0 {
			age = 0
		}
		items = append(items, FeedItem{
			ID:         n.ID,
			Title:      n.Title,
			Body:       n.Body,
			Kind:       n.Kind,
			Link:       n.Link,
			CreatedISO: n.CreatedAt.Format(time.RFC3339),
			AgeSeconds: age,
		})
	}
	return items
}

// GetNotifications возвращает ленту уведомлений
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	notifications, err := s.List(ctx, actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"notificaciones": ToFeed(notifications, s.now()),
	})
}

// MarkAsRead скрывает уведомление. ID принимается из формы или JSON.
func (s *NotificationService) MarkAsRead(c fiber.Ctx) error {
	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var payload struct {
		ID string `json:"id" form:"id"`
	}
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&payload); err != nil {
			return models.Validation("Formato inválido")
		}
	}
	if payload.ID == "" {
		payload.ID = c.FormValue("id")
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return models.NotFound("No encontrada")
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if err := s.Dismiss(ctx, actor, id); err != nil {
		return err
	}
	return api.OK(c, nil)
}
