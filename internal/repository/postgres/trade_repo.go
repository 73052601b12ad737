package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type tradeRepo struct {
	q querier
}

const tradeSelect = `
	SELECT t.id, t.requester_id, t.receiver_id, t.product_id, t.status, t.created_at, t.updated_at,
		req.username, rec.username, p.name, c.id
	FROM trades t
	JOIN users req ON req.id = t.requester_id
	JOIN users rec ON rec.id = t.receiver_id
	JOIN products p ON p.id = t.product_id
	LEFT JOIN chats c ON c.trade_id = t.id
`

func scanTrade(row pgx.Row) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(&t.ID, &t.RequesterID, &t.ReceiverID, &t.ProductID, &t.Status,
		&t.CreatedAt, &t.UpdatedAt, &t.RequesterUsername, &t.ReceiverUsername, &t.ProductName, &t.ChatID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tradeRepo) Create(ctx context.Context, trade *models.Trade) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO trades (id, requester_id, receiver_id, product_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, trade.ID, trade.RequesterID, trade.ReceiverID, trade.ProductID, trade.Status).
		Scan(&trade.CreatedAt, &trade.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка при создании обмена: %w", err)
	}
	return nil
}

func (r *tradeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return r.get(ctx, tradeSelect+` WHERE t.id = $1`, id)
}

func (r *tradeRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	return r.get(ctx, tradeSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id)
}

func (r *tradeRepo) get(ctx context.Context, query string, id uuid.UUID) (*models.Trade, error) {
	trade, err := scanTrade(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("Trueque no encontrado")
		}
		return nil, fmt.Errorf("ошибка при получении обмена: %w", err)
	}
	return trade, nil
}

func (r *tradeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE trades SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении статуса обмена: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("Trueque no encontrado")
	}
	return nil
}

func (r *tradeRepo) List(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error) {
	query := tradeSelect
	args := []any{filter.UserID}

	switch filter.Type {
	case models.TradeTypeIncoming:
		query += ` WHERE t.receiver_id = $1`
	case models.TradeTypeOutgoing:
		query += ` WHERE t.requester_id = $1`
	default:
		query += ` WHERE (t.receiver_id = $1 OR t.requester_id = $1)`
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}

	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка обменов: %w", err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования обмена: %w", err)
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}
