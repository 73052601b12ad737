package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type chatRepo struct {
	q querier
}

func (r *chatRepo) GetOrCreateForTrade(ctx context.Context, tradeID uuid.UUID) (*models.Chat, bool, error) {
	chat := &models.Chat{ID: uuid.New(), TradeID: tradeID}

	// Уникальный trade_id гарантирует не более одного чата на обмен
	err := r.q.QueryRow(ctx, `
		INSERT INTO chats (id, trade_id)
		VALUES ($1, $2)
		ON CONFLICT (trade_id) DO NOTHING
		RETURNING created_at
	`, chat.ID, tradeID).Scan(&chat.CreatedAt)

	if err == nil {
		return chat, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("ошибка при создании чата: %w", err)
	}

	var chatID uuid.UUID
	if err := r.q.QueryRow(ctx, `SELECT id FROM chats WHERE trade_id = $1`, tradeID).Scan(&chatID); err != nil {
		return nil, false, fmt.Errorf("ошибка при получении чата обмена: %w", err)
	}

	existing, err := r.GetByID(ctx, chatID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *chatRepo) SetParticipants(ctx context.Context, chatID uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM chat_participants WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("ошибка при очистке участников чата: %w", err)
	}

	for _, userID := range userIDs {
		_, err := r.q.Exec(ctx, `
			INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, chatID, userID)
		if err != nil {
			return fmt.Errorf("ошибка при добавлении участника чата: %w", err)
		}
	}
	return nil
}

func (r *chatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat := &models.Chat{ID: id}
	err := r.q.QueryRow(ctx, `SELECT trade_id, created_at FROM chats WHERE id = $1`, id).
		Scan(&chat.TradeID, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("Chat no encontrado")
		}
		return nil, fmt.Errorf("ошибка при получении чата: %w", err)
	}

	participants, err := r.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	chat.Participants = participants
	return chat, nil
}

func (r *chatRepo) participants(ctx context.Context, chatID uuid.UUID) ([]models.Participant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT u.id, u.username
		FROM chat_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.chat_id = $1
		ORDER BY u.username
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении участников чата: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.UserID, &p.Username); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника чата: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *chatRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	rows, err := r.q.Query(ctx, `
		SELECT c.id
		FROM chats c
		JOIN chat_participants cp ON cp.chat_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении чатов пользователя: %w", err)
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования чата: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении чатов: %w", err)
	}

	chats := make([]models.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}
