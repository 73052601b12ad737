package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type messageRepo struct {
	q querier
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO messages (id, chat_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, message.ID, message.ChatID, message.AuthorID, message.Content).Scan(&message.CreatedAt)

	if err != nil {
		return fmt.Errorf("ошибка при сохранении сообщения: %w", err)
	}
	return nil
}

func (r *messageRepo) ListByChat(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.id, m.chat_id, m.author_id, u.username, m.content, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at ASC, m.seq ASC
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сообщений: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.AuthorID, &m.AuthorUsername, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сообщения: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
