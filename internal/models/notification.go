package models

import (
	"time"

	"github.com/google/uuid"
)

// Категории уведомлений
const (
	NotificationNewTrade      = "new_trade"
	NotificationTradeAccepted = "trade_accepted"
	NotificationTradeRejected = "trade_rejected"
)

// Notification представляет уведомление пользователя
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Visible   bool      `json:"visible"`
}
