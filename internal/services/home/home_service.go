package home

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/services/catalog"
	"github.com/rajivgeraev/swapplace-api/internal/services/chat"
	"github.com/rajivgeraev/swapplace-api/internal/services/notification"
	"github.com/rajivgeraev/swapplace-api/internal/services/trade"
)

// Действия формы главной страницы
const (
	ActionCreateProduct  = "crear_producto"
	ActionEditProduct    = "editar_producto"
	ActionDeleteProduct  = "eliminar_producto"
	ActionOfferTrade     = "ofrecer_trueque"
	ActionRespondToTrade = "responder_trueque"
)

// HomeService собирает главную страницу из остальных сервисов
type HomeService struct {
	catalog       *catalog.CatalogService
	trades        *trade.TradeService
	chats         *chat.ChatService
	notifications *notification.NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewHomeService создает новый экземпляр HomeService
func NewHomeService(
	catalogService *catalog.CatalogService,
	tradeService *trade.TradeService,
	chatService *chat.ChatService,
	notificationService *notification.NotificationService,
	logger *zap.Logger,
) *HomeService {
	return &HomeService{
		catalog:       catalogService,
		trades:        tradeService,
		chats:         chatService,
		notifications: notificationService,
		logger:        logger,
		now:           time.Now,
	}
}

// Dashboard - данные главной страницы
type Dashboard struct {
	Products       []catalog.SearchResult  `json:"productos"`
	Notifications  []notification.FeedItem `json:"notificaciones"`
	PendingTrades  []models.Trade          `json:"trueques_pendientes"`
	AcceptedTrades []models.Trade          `json:"trueques_aceptados"`
	Chats          []models.Chat           `json:"chats"`
	Flash          string                  `json:"flash,omitempty"`
}

// Dashboard возвращает товары, ленту уведомлений, входящие ожидающие обмены,
// принятые обмены и чаты пользователя
func (s *HomeService) Dashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	products, err := s.catalog.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	notifications, err := s.notifications.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	pending, err := s.trades.List(ctx, actor, models.TradeTypeIncoming, models.TradePending)
	if err != nil {
		return nil, err
	}

	accepted, err := s.trades.List(ctx, actor, models.TradeTypeAll, models.TradeAccepted)
	if err != nil {
		return nil, err
	}

	chats, err := s.chats.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Products:       products,
		Notifications:  notification.ToFeed(notifications, s.now()),
		PendingTrades:  pending,
		AcceptedTrades: accepted,
		Chats:          chats,
	}, nil
}
