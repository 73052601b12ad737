// Package postgres реализует хранилище поверх PostgreSQL (pgx).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/swapplace-api/internal/repository"
)

// querier - общая часть pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store реализует repository.Store
type Store struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

// NewStore создает хранилище поверх пула соединений
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Users() repository.UserRepository                 { return &userRepo{q: s.q} }
func (s *Store) Products() repository.ProductRepository           { return &productRepo{q: s.q} }
func (s *Store) Trades() repository.TradeRepository               { return &tradeRepo{q: s.q} }
func (s *Store) Chats() repository.ChatRepository                 { return &chatRepo{q: s.q} }
func (s *Store) Messages() repository.MessageRepository           { return &messageRepo{q: s.q} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{q: s.q} }

// WithinTx выполняет fn в транзакции. Вложенный вызов переиспользует текущую транзакцию.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx) // Откатываем транзакцию в случае ошибки

	if err := fn(ctx, &Store{pool: s.pool, q: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

// isUniqueViolation сообщает, нарушено ли ограничение уникальности
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// likePattern экранирует спецсимволы LIKE и оборачивает строку в %
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
