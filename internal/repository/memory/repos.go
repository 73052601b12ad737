package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock()()

	for _, u := range r.s.data.users {
		if u.Username == user.Username {
			return models.Conflict("El nombre de usuario ya existe.")
		}
	}

	user.CreatedAt = r.s.now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer r.s.lock()()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, models.NotFound("Usuario no encontrado")
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer r.s.lock()()

	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.NotFound("Usuario no encontrado")
}

func (r *userRepo) UpsertTelegram(ctx context.Context, user *models.User) (*models.User, error) {
	defer r.s.lock()()

	if user.TelegramID != nil {
		for id, u := range r.s.data.users {
			if u.TelegramID != nil && *u.TelegramID == *user.TelegramID {
				u.FirstName = user.FirstName
				u.LastName = user.LastName
				u.AvatarURL = user.AvatarURL
				r.s.data.users[id] = u
				return &u, nil
			}
		}
	}

	for _, u := range r.s.data.users {
		if u.Username == user.Username {
			return nil, models.Conflict("El nombre de usuario ya existe.")
		}
	}

	created := *user
	created.CreatedAt = r.s.now()
	r.s.data.users[created.ID] = created
	return &created, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) withOwner(row productRow) models.Product {
	p := row.product
	p.OwnerUsername = r.s.data.users[p.OwnerID].Username
	return p
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	defer r.s.lock()()

	product.CreatedAt = r.s.now()
	r.s.data.products[product.ID] = productRow{product: *product, seq: r.s.data.next()}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	defer r.s.lock()()

	row, ok := r.s.data.products[id]
	if !ok {
		return nil, models.NotFound("Producto no encontrado")
	}
	p := r.withOwner(row)
	return &p, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	defer r.s.lock()()

	row, ok := r.s.data.products[product.ID]
	if !ok {
		return models.NotFound("Producto no encontrado")
	}
	row.product.Name = product.Name
	row.product.Description = product.Description
	row.product.ImageURL = product.ImageURL
	row.product.ImagePublicID = product.ImagePublicID
	r.s.data.products[product.ID] = row
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.products[id]; !ok {
		return models.NotFound("Producto no encontrado")
	}
	delete(r.s.data.products, id)

	// Каскадное удаление обменов, их чатов и сообщений
	for tradeID, t := range r.s.data.trades {
		if t.trade.ProductID != id {
			continue
		}
		delete(r.s.data.trades, tradeID)
		for chatID, c := range r.s.data.chats {
			if c.chat.TradeID != tradeID {
				continue
			}
			delete(r.s.data.chats, chatID)
			for msgID, m := range r.s.data.messages {
				if m.message.ChatID == chatID {
					delete(r.s.data.messages, msgID)
				}
			}
		}
	}
	return nil
}

func (r *productRepo) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	defer r.s.lock()()

	q := strings.ToLower(query)
	var rows []productRow
	for _, row := range r.s.data.products {
		owner := r.s.data.users[row.product.OwnerID].Username
		if strings.Contains(strings.ToLower(row.product.Name), q) || strings.Contains(strings.ToLower(owner), q) {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].product.CreatedAt.Equal(rows[j].product.CreatedAt) {
			return rows[i].product.CreatedAt.After(rows[j].product.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	products := []models.Product{}
	for _, row := range rows {
		if limit >= 0 && len(products) == limit {
			break
		}
		products = append(products, r.withOwner(row))
	}
	return products, nil
}

func (r *productRepo) List(ctx context.Context) ([]models.Product, error) {
	return r.Search(ctx, "", -1)
}

type tradeRepo struct{ s *Store }

func (r *tradeRepo) enrich(row tradeRow) models.Trade {
	t := row.trade
	t.RequesterUsername = r.s.data.users[t.RequesterID].Username
	t.ReceiverUsername = r.s.data.users[t.ReceiverID].Username
	t.ProductName = r.s.data.products[t.ProductID].product.Name
	t.ChatID = nil
	for id, c := range r.s.data.chats {
		if c.chat.TradeID == t.ID {
			chatID := id
			t.ChatID = &chatID
			break
		}
	}
	return t
}

func (r *tradeRepo) Create(ctx context.Context, trade *models.Trade) error {
	defer r.s.lock()()

	now := r.s.now()
	trade.CreatedAt = now
	trade.UpdatedAt = now
	r.s.data.trades[trade.ID] = tradeRow{trade: *trade, seq: r.s.data.next()}
	return nil
}

func (r *tradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	defer r.s.lock()()

	row, ok := r.s.data.trades[id]
	if !ok {
		return nil, models.NotFound("Trueque no encontrado")
	}
	t := r.enrich(row)
	return &t, nil
}

// GetForUpdate совпадает с GetByID: внутри транзакции хранилище уже заблокировано
func (r *tradeRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return r.GetByID(ctx, id)
}

func (r *tradeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	defer r.s.lock()()

	row, ok := r.s.data.trades[id]
	if !ok {
		return models.NotFound("Trueque no encontrado")
	}
	row.trade.Status = status
	row.trade.UpdatedAt = r.s.now()
	r.s.data.trades[id] = row
	return nil
}

func (r *tradeRepo) List(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error) {
	defer r.s.lock()()

	var rows []tradeRow
	for _, row := range r.s.data.trades {
		t := row.trade
		switch filter.Type {
		case models.TradeTypeIncoming:
			if t.ReceiverID != filter.UserID {
				continue
			}
		case models.TradeTypeOutgoing:
			if t.RequesterID != filter.UserID {
				continue
			}
		default:
			if t.ReceiverID != filter.UserID && t.RequesterID != filter.UserID {
				continue
			}
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].trade.CreatedAt.Equal(rows[j].trade.CreatedAt) {
			return rows[i].trade.CreatedAt.After(rows[j].trade.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	trades := make([]models.Trade, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, r.enrich(row))
	}
	return trades, nil
}

type chatRepo struct{ s *Store }

func (r *chatRepo) build(row chatRow) models.Chat {
	c := row.chat
	c.Participants = make([]models.Participant, 0, len(row.participants))
	for _, userID := range row.participants {
		c.Participants = append(c.Participants, models.Participant{
			UserID:   userID,
			Username: r.s.data.users[userID].Username,
		})
	}
	sort.Slice(c.Participants, func(i, j int) bool {
		return c.Participants[i].Username < c.Participants[j].Username
	})
	return c
}

func (r *chatRepo) GetOrCreateForTrade(ctx context.Context, tradeID uuid.UUID) (*models.Chat, bool, error) {
	defer r.s.lock()()

	for _, row := range r.s.data.chats {
		if row.chat.TradeID == tradeID {
			c := r.build(row)
			return &c, false, nil
		}
	}

	row := chatRow{
		chat: models.Chat{ID: uuid.New(), TradeID: tradeID, CreatedAt: r.s.now()},
		seq:  r.s.data.next(),
	}
	r.s.data.chats[row.chat.ID] = row
	c := r.build(row)
	return &c, true, nil
}

func (r *chatRepo) SetParticipants(ctx context.Context, chatID uuid.UUID, userIDs []uuid.UUID) error {
	defer r.s.lock()()

	row, ok := r.s.data.chats[chatID]
	if !ok {
		return models.NotFound("Chat no encontrado")
	}

	row.participants = nil
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			row.participants = append(row.participants, id)
		}
	}
	r.s.data.chats[chatID] = row
	return nil
}

func (r *chatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	defer r.s.lock()()

	row, ok := r.s.data.chats[id]
	if !ok {
		return nil, models.NotFound("Chat no encontrado")
	}
	c := r.build(row)
	return &c, nil
}

func (r *chatRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	defer r.s.lock()()

	var rows []chatRow
	for _, row := range r.s.data.chats {
		for _, id := range row.participants {
			if id == userID {
				rows = append(rows, row)
				break
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].chat.CreatedAt.Equal(rows[j].chat.CreatedAt) {
			return rows[i].chat.CreatedAt.After(rows[j].chat.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	chats := make([]models.Chat, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, r.build(row))
	}
	return chats, nil
}

type messageRepo struct{ s *Store }

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	defer r.s.lock()()

	if _, ok := r.s.data.chats[message.ChatID]; !ok {
		return models.NotFound("Chat no encontrado")
	}
	message.CreatedAt = r.s.now()
	r.s.data.messages[message.ID] = messageRow{message: *message, seq: r.s.data.next()}
	return nil
}

func (r *messageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	defer r.s.lock()()

	var rows []messageRow
	for _, row := range r.s.data.messages {
		if row.message.ChatID == chatID {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].message.CreatedAt.Equal(rows[j].message.CreatedAt) {
			return rows[i].message.CreatedAt.Before(rows[j].message.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})

	messages := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		m := row.message
		m.AuthorUsername = r.s.data.users[m.AuthorID].Username
		messages = append(messages, m)
	}
	return messages, nil
}

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	defer r.s.lock()()

	n.CreatedAt = r.s.now()
	r.s.data.notifications[n.ID] = notificationRow{notification: *n, seq: r.s.data.next()}
	return nil
}

func (r *notificationRepo) ListVisible(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	defer r.s.lock()()

	var rows []notificationRow
	for _, row := range r.s.data.notifications {
		if row.notification.UserID == userID && row.notification.Visible {
			rows = append(rows, row)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].notification.CreatedAt.Equal(rows[j].notification.CreatedAt) {
			return rows[i].notification.CreatedAt.After(rows[j].notification.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	notifications := []models.Notification{}
	for _, row := range rows {
		if len(notifications) == limit {
			break
		}
		notifications = append(notifications, row.notification)
	}
	return notifications, nil
}

func (r *notificationRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	defer r.s.lock()()

	row, ok := r.s.data.notifications[id]
	if !ok || row.notification.UserID != userID {
		return nil, models.NotFound("No encontrada")
	}
	n := row.notification
	return &n, nil
}

func (r *notificationRepo) Hide(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock()()

	row, ok := r.s.data.notifications[id]
	if !ok {
		return models.NotFound("No encontrada")
	}
	row.notification.Visible = false
	r.s.data.notifications[id] = row
	return nil
}

func (r *notificationRepo) PurgeHidden(ctx context.Context, before time.Time) (int64, error) {
	defer r.s.lock()()

	var purged int64
	for id, row := range r.s.data.notifications {
		if !row.notification.Visible && row.notification.CreatedAt.Before(before) {
			delete(r.s.data.notifications, id)
			purged++
		}
	}
	return purged, nil
}
