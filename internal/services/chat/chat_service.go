package chat

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajivgeraev/swapplace-api/internal/events"
	"github.com/rajivgeraev/swapplace-api/internal/metrics"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

// TimestampLayout - формат времени сообщений: дд/мм/гггг чч:мм
const TimestampLayout = "02/01/2006 15:04"

// ReportText - ответ на жалобу на чат
const ReportText = "El equipo de soporte de Swap Place estará revisando su conversación en busca de la razón del reporte. " +
	"Gracias por avisar. Recibirá la noticia de este caso en las próximas 72 hrs. Gracias por preferir SwapPlace."

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	store     repository.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	location  *time.Location
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(store repository.Store, publisher events.Publisher, m *metrics.Metrics, location *time.Location, logger *zap.Logger) *ChatService {
	if location == nil {
		location = time.UTC
	}
	return &ChatService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		location:  location,
	}
}

// Detail - чат с сообщениями и списком чатов пользователя
type Detail struct {
	Chat     *models.Chat
	Messages []models.Message
	Chats    []models.Chat
}

// participantChat возвращает чат, если пользователь его участник
func (s *ChatService) participantChat(ctx context.Context, actor models.Actor, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.store.Chats().GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(actor.ID) {
		return nil, models.Forbidden("No autorizado")
	}
	return chat, nil
}

// Send добавляет сообщение в чат от имени участника
func (s *ChatService) Send(ctx context.Context, actor models.Actor, chatID uuid.UUID, text string) (*models.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, models.Validation("Mensaje vacío")
	}
	if utf8.RuneCountInString(content) > models.MaxMessageLength {
		return nil, models.Validation("El mensaje no puede superar 500 caracteres.")
	}

	if _, err := s.participantChat(ctx, actor, chatID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ID:             uuid.New(),
		ChatID:         chatID,
		AuthorID:       actor.ID,
		AuthorUsername: actor.Username,
		Content:        content,
	}
	if err := s.store.Messages().Create(ctx, message); err != nil {
		return nil, err
	}

	s.metrics.MessageSent()

	event := events.MessageEvent{
		MessageID: message.ID,
		ChatID:    chatID,
		AuthorID:  actor.ID,
		CreatedAt: message.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.SubjectChatMessage, event); err != nil {
		s.logger.Warn("Не удалось опубликовать событие сообщения",
			zap.String("chat_id", chatID.String()),
			zap.Error(err),
		)
	}

	return message, nil
}

// Fetch возвращает все сообщения чата в порядке отправки
func (s *ChatService) Fetch(ctx context.Context, actor models.Actor, chatID uuid.UUID) ([]models.Message, error) {
	if _, err := s.participantChat(ctx, actor, chatID); err != nil {
		return nil, err
	}
	return s.store.Messages().ListByChat(ctx, chatID)
}

// List возвращает чаты пользователя, новые первыми
func (s *ChatService) List(ctx context.Context, actor models.Actor) ([]models.Chat, error) {
	return s.store.Chats().ListForUser(ctx, actor.ID)
}

// Detail возвращает чат, его сообщения и остальные чаты пользователя
func (s *ChatService) Detail(ctx context.Context, actor models.Actor, chatID uuid.UUID) (*Detail, error) {
	chat, err := s.participantChat(ctx, actor, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.Messages().ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	chats, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &Detail{Chat: chat, Messages: messages, Chats: chats}, nil
}

// Report принимает жалобу на чат от участника
func (s *ChatService) Report(ctx context.Context, actor models.Actor, chatID uuid.UUID) (string, error) {
	if _, err := s.participantChat(ctx, actor, chatID); err != nil {
		return "", err
	}

	s.logger.Info("Получена жалоба на чат",
		zap.String("chat_id", chatID.String()),
		zap.String("user", actor.Username),
	)
	return ReportText, nil
}

// Rate принимает оценку собеседника от 1 до 5. Оценка не сохраняется.
func (s *ChatService) Rate(ctx context.Context, actor models.Actor, chatID uuid.UUID, rawRating string) (string, error) {
	if _, err := s.participantChat(ctx, actor, chatID); err != nil {
		return "", err
	}

	rating, err := strconv.Atoi(strings.TrimSpace(rawRating))
	if err != nil {
		return "", models.Validation("Rating inválido")
	}
	if rating < 1 || rating > 5 {
		return "", models.Validation("Fuera de rango")
	}

	s.logger.Info("Получена оценка чата",
		zap.String("chat_id", chatID.String()),
		zap.String("user", actor.Username),
		zap.Int("rating", rating),
	)
	return "Calificación de " + strconv.Itoa(rating) + " estrellas registrada correctamente.", nil
}

// FormatTimestamp форматирует время сообщения в часовом поясе приложения
func (s *ChatService) FormatTimestamp(t time.Time) string {
	return t.In(s.location).Format(TimestampLayout)
}
