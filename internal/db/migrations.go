package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		password_hash TEXT,
		telegram_id BIGINT UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		image_public_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS trades (
		id UUID PRIMARY KEY,
		requester_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		status VARCHAR(10) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'accepted', 'rejected')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (requester_id <> receiver_id)
	)`,

	`CREATE TABLE IF NOT EXISTS chats (
		id UUID PRIMARY KEY,
		trade_id UUID NOT NULL UNIQUE REFERENCES trades(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS chat_participants (
		chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (chat_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		seq BIGSERIAL,
		chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content VARCHAR(500) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title VARCHAR(150) NOT NULL,
		body VARCHAR(300) NOT NULL,
		kind VARCHAR(50) NOT NULL DEFAULT '',
		link VARCHAR(300) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		visible BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	// Индексы
	`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_receiver_status ON trades(receiver_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_requester ON trades(requester_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_order ON messages(chat_id, created_at, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_visible ON notifications(user_id, visible, created_at DESC)`,
}

// Migrate последовательно применяет схему базы данных. Все выражения идемпотентны.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, migration := range migrations {
		if _, err := conn.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("ошибка при выполнении миграции %d: %w", i, err)
		}
	}
	return nil
}

// RunMigrations открывает отдельное соединение через database/sql и применяет схему
func RunMigrations(ctx context.Context, dsn string) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("ошибка при открытии соединения для миграций: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ошибка при проверке соединения для миграций: %w", err)
	}

	return Migrate(ctx, conn)
}
