// Package notification реализует ленту уведомлений пользователя.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

// FeedLimit - сколько уведомлений отдается в ленте
const FeedLimit = 20

// NotificationService представляет сервис для работы с уведомлениями
type NotificationService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(store repository.Store, logger *zap.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger, now: time.Now}
}

// List возвращает последние видимые уведомления пользователя, новые первыми
func (s *NotificationService) List(ctx context.Context, actor models.Actor) ([]models.Notification, error) {
	return s.store.Notifications().ListVisible(ctx, actor.ID, FeedLimit)
}

// Dismiss скрывает уведомление. Повторное скрытие не является ошибкой.
func (s *NotificationService) Dismiss(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	n, err := s.store.Notifications().GetForUser(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !n.Visible {
		return nil
	}
	return s.store.Notifications().Hide(ctx, n.ID)
}

// Purge удаляет скрытые уведомления, созданные раньше before
func (s *NotificationService) Purge(ctx context.Context, before time.Time) (int64, error) {
	purged, err := s.store.Notifications().PurgeHidden(ctx, before)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("Удалены скрытые уведомления", zap.Int64("count", purged))
	}
	return purged, nil
}
