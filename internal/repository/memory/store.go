// Package memory реализует хранилище в памяти процесса. Используется в тестах
// и при STORAGE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

type productRow struct {
	product models.Product
	seq     int64
}

type tradeRow struct {
	trade models.Trade
	seq   int64
}

type chatRow struct {
	chat         models.Chat
	participants []uuid.UUID
	seq          int64
}

type messageRow struct {
	message models.Message
	seq     int64
}

type notificationRow struct {
	notification models.Notification
	seq          int64
}

// state - все данные хранилища. Копируется целиком перед транзакцией.
type state struct {
	seq           int64
	users         map[uuid.UUID]models.User
	products      map[uuid.UUID]productRow
	trades        map[uuid.UUID]tradeRow
	chats         map[uuid.UUID]chatRow
	messages      map[uuid.UUID]messageRow
	notifications map[uuid.UUID]notificationRow
}

func newState() *state {
	return &state{
		users:         make(map[uuid.UUID]models.User),
		products:      make(map[uuid.UUID]productRow),
		trades:        make(map[uuid.UUID]tradeRow),
		chats:         make(map[uuid.UUID]chatRow),
		messages:      make(map[uuid.UUID]messageRow),
		notifications: make(map[uuid.UUID]notificationRow),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.trades {
		c.trades[k] = v
	}
	for k, v := range st.chats {
		v.participants = append([]uuid.UUID(nil), v.participants...)
		c.chats[k] = v
	}
	for k, v := range st.messages {
		c.messages[k] = v
	}
	for k, v := range st.notifications {
		c.notifications[k] = v
	}
	return c
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store реализует repository.Store в памяти
type Store struct {
	mu   *sync.Mutex
	data *state
	inTx bool
	now  func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: newState(), now: time.Now}
}

// lock захватывает мьютекс, если вызов сделан вне транзакции.
// Внутри транзакции мьютекс уже удерживается WithinTx.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }
func (s *Store) Products() repository.ProductRepository           { return &productRepo{s} }
func (s *Store) Trades() repository.TradeRepository               { return &tradeRepo{s} }
func (s *Store) Chats() repository.ChatRepository                 { return &chatRepo{s} }
func (s *Store) Messages() repository.MessageRepository           { return &messageRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{s} }

// WithinTx выполняет fn под эксклюзивной блокировкой. При ошибке данные
// возвращаются к состоянию до начала транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true, now: s.now}

	if err := fn(ctx, tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}
