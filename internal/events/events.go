// Package events публикует доменные события приложения.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Темы событий
const (
	SubjectTradeProposed = "swap.trade.proposed"
	SubjectTradeAccepted = "swap.trade.accepted"
	SubjectTradeRejected = "swap.trade.rejected"
	SubjectChatMessage   = "swap.chat.message"
)

// Publisher публикует события. Ошибки публикации не должны отменять операцию.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close()
}

// TradeEvent - событие изменения обмена
type TradeEvent struct {
	TradeID     uuid.UUID  `json:"trade_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id"`
	Status      string     `json:"status"`
	ChatID      *uuid.UUID `json:"chat_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// MessageEvent - событие нового сообщения в чате
type MessageEvent struct {
	MessageID uuid.UUID `json:"message_id"`
	ChatID    uuid.UUID `json:"chat_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NopPublisher ничего не публикует. Используется, если NATS не настроен.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, data interface{}) error { return nil }

func (NopPublisher) Close() {}
