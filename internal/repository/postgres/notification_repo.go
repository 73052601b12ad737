package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type notificationRepo struct {
	q querier
}

const notificationColumns = `id, user_id, title, body, kind, link, created_at, visible`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Kind, &n.Link, &n.CreatedAt, &n.Visible); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, body, kind, link, visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, n.ID, n.UserID, n.Title, n.Body, n.Kind, n.Link, n.Visible).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("ошибка при создании уведомления: %w", err)
	}
	return nil
}

func (r *notificationRepo) ListVisible(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1 AND visible
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении уведомлений: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	n, err := scanNotification(r.q.QueryRow(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("No encontrada")
		}
		return nil, fmt.Errorf("ошибка при получении уведомления: %w", err)
	}
	return n, nil
}

func (r *notificationRepo) Hide(ctx context.Context, id uuid.UUID) error {
	if _, err := r.q.Exec(ctx, `UPDATE notifications SET visible = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("ошибка при скрытии уведомления: %w", err)
	}
	return nil
}

func (r *notificationRepo) PurgeHidden(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM notifications WHERE NOT visible AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("ошибка при очистке уведомлений: %w", err)
	}
	return tag.RowsAffected(), nil
}
