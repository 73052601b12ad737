package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type productRepo struct {
	q querier
}

const productSelect = `
	SELECT p.id, p.owner_id, u.username, p.name, p.description, p.image_url, p.image_public_id, p.created_at
	FROM products p
	JOIN users u ON u.id = p.owner_id
`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Name, &p.Description,
		&p.ImageURL, &p.ImagePublicID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO products (id, owner_id, name, description, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, product.ID, product.OwnerID, product.Name, product.Description,
		product.ImageURL, product.ImagePublicID).Scan(&product.CreatedAt)

	if err != nil {
		return fmt.Errorf("ошибка при создании товара: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("Producto no encontrado")
		}
		return nil, fmt.Errorf("ошибка при получении товара: %w", err)
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	// Владелец товара не меняется
	tag, err := r.q.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, image_url = $3, image_public_id = $4
		WHERE id = $5
	`, product.Name, product.Description, product.ImageURL, product.ImagePublicID, product.ID)

	if err != nil {
		return fmt.Errorf("ошибка при обновлении товара: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("Producto no encontrado")
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка при удалении товара: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFound("Producto no encontrado")
	}
	return nil
}

func (r *productRepo) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	rows, err := r.q.Query(ctx, productSelect+`
		WHERE p.name ILIKE $1 OR u.username ILIKE $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске товаров: %w", err)
	}
	return collectProducts(rows)
}

func (r *productRepo) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.q.Query(ctx, productSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении товаров: %w", err)
	}
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования товара: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}
