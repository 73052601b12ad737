// Package repository описывает хранилище записей приложения.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// Store объединяет репозитории и границу транзакции
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Trades() TradeRepository
	Chats() ChatRepository
	Messages() MessageRepository
	Notifications() NotificationRepository

	// WithinTx выполняет fn в одной транзакции. Если fn возвращает ошибку,
	// все изменения, сделанные через переданный Store, откатываются.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// UserRepository хранит пользователей
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// UpsertTelegram создает пользователя по Telegram ID или обновляет его профиль
	UpsertTelegram(ctx context.Context, user *models.User) (*models.User, error)
}

// ProductRepository хранит товары
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	// Delete удаляет товар вместе с его обменами, чатами и сообщениями
	Delete(ctx context.Context, id uuid.UUID) error
	// Search ищет подстроку в названии товара или имени владельца без учета регистра,
	// новые товары первыми
	Search(ctx context.Context, query string, limit int) ([]models.Product, error)
	// List возвращает все товары, новые первыми
	List(ctx context.Context) ([]models.Product, error)
}

// TradeRepository хранит предложения обмена
type TradeRepository interface {
	Create(ctx context.Context, trade *models.Trade) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	// GetForUpdate читает обмен с блокировкой строки до конца транзакции
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error)
}

// ChatRepository хранит чаты
type ChatRepository interface {
	// GetOrCreateForTrade возвращает чат обмена, создавая его при первом обращении
	GetOrCreateForTrade(ctx context.Context, tradeID uuid.UUID) (*models.Chat, bool, error)
	SetParticipants(ctx context.Context, chatID uuid.UUID, userIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
}

// MessageRepository хранит сообщения чатов
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListByChat возвращает сообщения в порядке отправки
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
}

// NotificationRepository хранит уведомления
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListVisible(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	// GetForUser ищет уведомление по ID среди уведомлений пользователя, включая скрытые
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	Hide(ctx context.Context, id uuid.UUID) error
	// PurgeHidden удаляет скрытые уведомления, созданные раньше before
	PurgeHidden(ctx context.Context, before time.Time) (int64, error)
}
