package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/events"
	"github.com/rajivgeraev/swapplace-api/internal/metrics"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	store     repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(store repository.Store, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *TradeService {
	return &TradeService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// RespondResult - результат ответа на предложение обмена. Chat заполнен только при принятии.
type RespondResult struct {
	Trade *models.Trade `json:"trade"`
	Chat  *models.Chat  `json:"chat,omitempty"`
}

// Propose создает предложение обмена на товар и уведомляет владельца товара
func (s *TradeService) Propose(ctx context.Context, actor models.Actor, productID uuid.UUID) (*models.Trade, error) {
	var trade *models.Trade

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}

		if product.IsOwnedBy(actor.ID) {
			return models.ErrOwnProduct
		}

		trade = &models.Trade{
			ID:          uuid.New(),
			RequesterID: actor.ID,
			ReceiverID:  product.OwnerID,
			ProductID:   product.ID,
			Status:      models.TradePending,

			RequesterUsername: actor.Username,
			ReceiverUsername:  product.OwnerUsername,
			ProductName:       product.Name,
		}
		if err := tx.Trades().Create(ctx, trade); err != nil {
			return err
		}

		return tx.Notifications().Create(ctx, &models.Notification{
			ID:      uuid.New(),
			UserID:  product.OwnerID,
			Title:   "Nueva solicitud de trueque",
			Body:    fmt.Sprintf("%s ofreció un trueque por \"%s\".", actor.Username, product.Name),
			Kind:    models.NotificationNewTrade,
			Link:    "/",
			Visible: true,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создано предложение обмена",
		zap.String("trade_id", trade.ID.String()),
		zap.String("requester", actor.Username),
		zap.String("product_id", productID.String()),
	)
	s.metrics.TradeStatus(models.TradePending)
	s.publish(ctx, events.SubjectTradeProposed, trade, nil)

	return trade, nil
}

// Respond принимает или отклоняет предложение обмена. Ответить может только
// получатель и только пока обмен ожидает ответа.
func (s *TradeService) Respond(ctx context.Context, actor models.Actor, tradeID uuid.UUID, decision models.Decision) (*RespondResult, error) {
	if decision != models.DecisionAccept && decision != models.DecisionReject {
		return nil, models.Validation("Decisión inválida")
	}

	result := &RespondResult{}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		// Блокируем строку обмена до конца транзакции
		trade, err := tx.Trades().GetForUpdate(ctx, tradeID)
		if err != nil {
			return err
		}

		if trade.ReceiverID != actor.ID {
			return models.Forbidden("No autorizado")
		}
		if !trade.IsPending() {
			return models.Conflict("Este trueque ya fue respondido.")
		}

		if decision == models.DecisionAccept {
			chat, err := s.accept(ctx, tx, trade)
			if err != nil {
				return err
			}
			trade.Status = models.TradeAccepted
			trade.ChatID = &chat.ID
			result.Chat = chat
		} else {
			if err := s.reject(ctx, tx, trade); err != nil {
				return err
			}
			trade.Status = models.TradeRejected
		}

		result.Trade = trade
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Получен ответ на предложение обмена",
		zap.String("trade_id", tradeID.String()),
		zap.String("status", result.Trade.Status),
		zap.String("receiver", actor.Username),
	)
	s.metrics.TradeStatus(result.Trade.Status)

	subject := events.SubjectTradeRejected
	var chatID *uuid.UUID
	if result.Chat != nil {
		subject = events.SubjectTradeAccepted
		chatID = &result.Chat.ID
	}
	s.publish(ctx, subject, result.Trade, chatID)

	return result, nil
}

func (s *TradeService) accept(ctx context.Context, tx repository.Store, trade *models.Trade) (*models.Chat, error) {
	if err := tx.Trades().UpdateStatus(ctx, trade.ID, models.TradeAccepted); err != nil {
		return nil, err
	}

	chat, _, err := tx.Chats().GetOrCreateForTrade(ctx, trade.ID)
	if err != nil {
		return nil, err
	}

	// Участники чата - ровно инициатор и получатель обмена
	if err := tx.Chats().SetParticipants(ctx, chat.ID, []uuid.UUID{trade.RequesterID, trade.ReceiverID}); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("/chat/%s/", chat.ID)
	notifications := []*models.Notification{
		{
			UserID: trade.RequesterID,
			Body:   fmt.Sprintf("%s aceptó tu solicitud. Pulsa Ver chat.", trade.ReceiverUsername),
		},
		{
			UserID: trade.ReceiverID,
			Body:   fmt.Sprintf("Aceptaste la solicitud de %s. Pulsa Ver chat.", trade.RequesterUsername),
		},
	}
	for _, n := range notifications {
		n.ID = uuid.New()
		n.Title = "Trueque aceptado"
		n.Kind = models.NotificationTradeAccepted
		n.Link = link
		n.Visible = true
		if err := tx.Notifications().Create(ctx, n); err != nil {
			return nil, err
		}
	}

	return tx.Chats().GetByID(ctx, chat.ID)
}

func (s *TradeService) reject(ctx context.Context, tx repository.Store, trade *models.Trade) error {
	if err := tx.Trades().UpdateStatus(ctx, trade.ID, models.TradeRejected); err != nil {
		return err
	}

	return tx.Notifications().Create(ctx, &models.Notification{
		ID:      uuid.New(),
		UserID:  trade.RequesterID,
		Title:   "Trueque rechazado",
		Body:    fmt.Sprintf("%s rechazó tu solicitud por \"%s\".", trade.ReceiverUsername, trade.ProductName),
		Kind:    models.NotificationTradeRejected,
		Link:    "/",
		Visible: true,
	})
}

// List возвращает обмены пользователя, новые первыми
func (s *TradeService) List(ctx context.Context, actor models.Actor, tradeType, status string) ([]models.Trade, error) {
	filter := models.TradeFilter{UserID: actor.ID}

	switch tradeType {
	case "", models.TradeTypeAll:
		filter.Type = models.TradeTypeAll
	case models.TradeTypeIncoming, models.TradeTypeOutgoing:
		filter.Type = tradeType
	default:
		return nil, models.Validation("Tipo de trueque inválido")
	}

	switch status {
	case "", "all":
	case models.TradePending, models.TradeAccepted, models.TradeRejected:
		filter.Status = status
	default:
		return nil, models.Validation("Estado de trueque inválido")
	}

	return s.store.Trades().List(ctx, filter)
}

// publish отправляет событие обмена. Ошибка только логируется: изменения уже зафиксированы.
func (s *TradeService) publish(ctx context.Context, subject string, trade *models.Trade, chatID *uuid.UUID) {
	event := events.TradeEvent{
		TradeID:     trade.ID,
		ProductID:   trade.ProductID,
		RequesterID: trade.RequesterID,
		ReceiverID:  trade.ReceiverID,
		Status:      trade.Status,
		ChatID:      chatID,
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("Не удалось опубликовать событие обмена",
			zap.String("subject", subject),
			zap.String("trade_id", trade.ID.String()),
			zap.Error(err),
		)
	}
}
