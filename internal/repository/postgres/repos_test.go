package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/swapplace-api/internal/db"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

// testPool равен nil, если Docker недоступен
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(runWithPostgres(m))
}

func runWithPostgres(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("Docker недоступен, тесты PostgreSQL пропускаются: %v", err)
		return m.Run()
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=swap_user",
			"POSTGRES_PASSWORD=swap_pass",
			"POSTGRES_DB=swapplace_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("Не удалось запустить PostgreSQL: %v", err)
		return m.Run()
	}
	defer pool.Purge(resource)
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("postgres://swap_user:swap_pass@%s/swapplace_test?sslmode=disable",
		resource.GetHostPort("5432/tcp"))

	ctx := context.Background()
	if err := pool.Retry(func() error {
		return db.RunMigrations(ctx, dsn)
	}); err != nil {
		log.Printf("PostgreSQL не отвечает: %v", err)
		return m.Run()
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Printf("Не удалось создать пул: %v", err)
		return m.Run()
	}
	defer testPool.Close()

	return m.Run()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testPool == nil {
		t.Skip("PostgreSQL недоступен")
	}

	_, err := testPool.Exec(context.Background(), `
		TRUNCATE users, products, trades, chats, chat_participants, messages, notifications CASCADE
	`)
	require.NoError(t, err)
	return NewStore(testPool)
}

func createUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New(), Username: username, Role: models.RoleUser}
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

func createProduct(t *testing.T, s *Store, owner *models.User, name string, createdAt time.Time) *models.Product {
	t.Helper()
	ctx := context.Background()
	product := &models.Product{ID: uuid.New(), OwnerID: owner.ID, Name: name, Description: "desc"}
	require.NoError(t, s.Products().Create(ctx, product))

	// Явное время создания делает порядок выдачи детерминированным
	_, err := testPool.Exec(ctx, `UPDATE products SET created_at = $1 WHERE id = $2`, createdAt, product.ID)
	require.NoError(t, err)
	return product
}

func createTrade(t *testing.T, s *Store, requester *models.User, product *models.Product) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		ID:          uuid.New(),
		RequesterID: requester.ID,
		ReceiverID:  product.OwnerID,
		ProductID:   product.ID,
		Status:      models.TradePending,
	}
	require.NoError(t, s.Trades().Create(context.Background(), trade))
	return trade
}

func TestUserRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	assert.False(t, ana.CreatedAt.IsZero())

	err := s.Users().Create(ctx, &models.User{ID: uuid.New(), Username: "ana", Role: models.RoleUser})
	assert.ErrorIs(t, err, models.ErrConflict)

	found, err := s.Users().GetByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, found.ID)
	assert.Empty(t, found.PasswordHash)

	_, err = s.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	telegramID := int64(4242)
	first, err := s.Users().UpsertTelegram(ctx, &models.User{
		ID: uuid.New(), Username: "tg_4242", TelegramID: &telegramID, FirstName: "Ana", Role: models.RoleUser,
	})
	require.NoError(t, err)

	second, err := s.Users().UpsertTelegram(ctx, &models.User{
		ID: uuid.New(), Username: "otro", TelegramID: &telegramID, FirstName: "Ana María", Role: models.RoleUser,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "tg_4242", second.Username)
	assert.Equal(t, "Ana María", second.FirstName)
}

func TestProductRepo_SearchOrderLimitAndEscaping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "Beto")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	old := createProduct(t, s, ana, "Bici vieja", base)
	newest := createProduct(t, s, ana, "BICI nueva", base.Add(2*time.Hour))
	middle := createProduct(t, s, beto, "Libro", base.Add(time.Hour))
	createProduct(t, s, beto, "Descuento 50% lámpara", base.Add(3*time.Hour))
	createProduct(t, s, beto, "Descuento 500 sillas", base.Add(4*time.Hour))

	products, err := s.Products().Search(ctx, "bici", 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, newest.ID, products[0].ID)
	assert.Equal(t, old.ID, products[1].ID)
	assert.Equal(t, "ana", products[0].OwnerUsername)

	// Совпадение по имени владельца без учета регистра
	products, err = s.Products().Search(ctx, "beto", 10)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, middle.ID, products[2].ID)

	// % в запросе - обычный символ
	products, err = s.Products().Search(ctx, "50%", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Descuento 50% lámpara", products[0].Name)

	products, err = s.Products().Search(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Descuento 500 sillas", products[0].Name)

	all, err := s.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "Descuento 500 sillas", all[0].Name)
	assert.Equal(t, old.ID, all[4].ID)
}

func TestProductRepo_MissingRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Products().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.Products().Update(ctx, &models.Product{ID: uuid.New(), Name: "x", Description: "y"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.Products().Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.Trades().UpdateStatus(ctx, uuid.New(), models.TradeAccepted)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestChatRepo_GetOrCreateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	trade := createTrade(t, s, beto, createProduct(t, s, ana, "Bici", time.Now()))

	chat, created, err := s.Chats().GetOrCreateForTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, s.Chats().SetParticipants(ctx, chat.ID, []uuid.UUID{beto.ID, ana.ID}))

	again, created, err := s.Chats().GetOrCreateForTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)
	require.Len(t, again.Participants, 2)
	assert.Equal(t, "ana", again.Participants[0].Username)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM chats WHERE trade_id = $1`, trade.ID).Scan(&count))
	assert.Equal(t, 1, count)

	loaded, err := s.Trades().GetByID(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ChatID)
	assert.Equal(t, chat.ID, *loaded.ChatID)

	chats, err := s.Chats().ListForUser(ctx, beto.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	_, err = s.Chats().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTradeRepo_GetForUpdateLocksRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	trade := createTrade(t, s, beto, createProduct(t, s, ana, "Bici", time.Now()))

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Trades().GetForUpdate(ctx, trade.ID); err != nil {
			return err
		}

		// Вторая транзакция ждет блокировку до таймаута
		waitCtx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		lockErr := s.WithinTx(waitCtx, func(ctx context.Context, other repository.Store) error {
			_, err := other.Trades().GetForUpdate(ctx, trade.ID)
			return err
		})
		assert.Error(t, lockErr)

		return tx.Trades().UpdateStatus(ctx, trade.ID, models.TradeAccepted)
	})
	require.NoError(t, err)

	loaded, err := s.Trades().GetByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeAccepted, loaded.Status)
}

func TestTradeRepo_ListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	incoming := createTrade(t, s, beto, createProduct(t, s, ana, "Bici", time.Now()))
	outgoing := createTrade(t, s, ana, createProduct(t, s, beto, "Libro", time.Now()))
	require.NoError(t, s.Trades().UpdateStatus(ctx, outgoing.ID, models.TradeRejected))

	trades, err := s.Trades().List(ctx, models.TradeFilter{UserID: ana.ID, Type: models.TradeTypeIncoming})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, incoming.ID, trades[0].ID)
	assert.Equal(t, "beto", trades[0].RequesterUsername)
	assert.Equal(t, "Bici", trades[0].ProductName)
	assert.Nil(t, trades[0].ChatID)

	trades, err = s.Trades().List(ctx, models.TradeFilter{UserID: ana.ID, Type: models.TradeTypeAll, Status: models.TradeRejected})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, outgoing.ID, trades[0].ID)
}

func TestWithinTx_RollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	trade := createTrade(t, s, beto, createProduct(t, s, ana, "Bici", time.Now()))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		require.NoError(t, tx.Trades().UpdateStatus(ctx, trade.ID, models.TradeAccepted))
		if _, _, err := tx.Chats().GetOrCreateForTrade(ctx, trade.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := s.Trades().GetByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradePending, loaded.Status)
	assert.Nil(t, loaded.ChatID)
}

func TestMessageRepo_OrderWithinSameTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	trade := createTrade(t, s, beto, createProduct(t, s, ana, "Bici", time.Now()))
	chat, _, err := s.Chats().GetOrCreateForTrade(ctx, trade.ID)
	require.NoError(t, err)

	// В одной транзакции NOW() одинаков, порядок задает seq
	texts := []string{"uno", "dos", "tres", "cuatro"}
	err = s.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		for i, text := range texts {
			author := ana.ID
			if i%2 == 1 {
				author = beto.ID
			}
			err := tx.Messages().Create(ctx, &models.Message{ID: uuid.New(), ChatID: chat.ID, AuthorID: author, Content: text})
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	messages, err := s.Messages().ListByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, len(texts))
	for i, text := range texts {
		assert.Equal(t, text, messages[i].Content)
	}
	assert.Equal(t, "beto", messages[1].AuthorUsername)
	assert.True(t, messages[0].CreatedAt.Equal(messages[3].CreatedAt))
}

func TestProductRepo_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")
	product := createProduct(t, s, ana, "Bici", time.Now())
	trade := createTrade(t, s, beto, product)
	chat, _, err := s.Chats().GetOrCreateForTrade(ctx, trade.ID)
	require.NoError(t, err)
	require.NoError(t, s.Messages().Create(ctx, &models.Message{ID: uuid.New(), ChatID: chat.ID, AuthorID: beto.ID, Content: "hola"}))

	require.NoError(t, s.Products().Delete(ctx, product.ID))

	_, err = s.Trades().GetByID(ctx, trade.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.Chats().GetByID(ctx, chat.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE chat_id = $1`, chat.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestNotificationRepo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ana := createUser(t, s, "ana")
	beto := createUser(t, s, "beto")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := &models.Notification{
			ID: uuid.New(), UserID: ana.ID, Title: fmt.Sprintf("n%d", i), Body: "b",
			Kind: models.NotificationNewTrade, Link: "/", Visible: true,
		}
		require.NoError(t, s.Notifications().Create(ctx, n))
		_, err := testPool.Exec(ctx, `UPDATE notifications SET created_at = $1 WHERE id = $2`,
			time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC), n.ID)
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	visible, err := s.Notifications().ListVisible(ctx, ana.ID, 2)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "n2", visible[0].Title)

	_, err = s.Notifications().GetForUser(ctx, ids[0], beto.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.Notifications().Hide(ctx, ids[2]))
	hidden, err := s.Notifications().GetForUser(ctx, ids[2], ana.ID)
	require.NoError(t, err)
	assert.False(t, hidden.Visible)

	purged, err := s.Notifications().PurgeHidden(ctx, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	visible, err = s.Notifications().ListVisible(ctx, ana.ID, 20)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}
