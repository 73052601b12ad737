package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

type userRepo struct {
	q querier
}

const userColumns = `id, username, password_hash, telegram_id, first_name, last_name, avatar_url, role, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var passwordHash *string

	err := row.Scan(
		&user.ID, &user.Username, &passwordHash, &user.TelegramID,
		&user.FirstName, &user.LastName, &user.AvatarURL, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	err := r.q.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, telegram_id, first_name, last_name, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, user.ID, user.Username, passwordHash, user.TelegramID,
		user.FirstName, user.LastName, user.AvatarURL, user.Role).Scan(&user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return models.Conflict("El nombre de usuario ya existe.")
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("Usuario no encontrado")
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NotFound("Usuario no encontrado")
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}
	return user, nil
}

func (r *userRepo) UpsertTelegram(ctx context.Context, user *models.User) (*models.User, error) {
	// Имя пользователя не перезаписываем: оно могло быть занято при первом входе
	saved, err := scanUser(r.q.QueryRow(ctx, `
		INSERT INTO users (id, username, telegram_id, first_name, last_name, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url
		RETURNING `+userColumns,
		user.ID, user.Username, user.TelegramID, user.FirstName, user.LastName, user.AvatarURL, user.Role))

	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.Conflict("El nombre de usuario ya existe.")
		}
		return nil, fmt.Errorf("ошибка при сохранении Telegram пользователя: %w", err)
	}
	return saved, nil
}
