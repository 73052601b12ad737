package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxProductNameLength - максимальная длина названия товара
const MaxProductNameLength = 100

// Product представляет товар, выставленный для обмена
type Product struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	OwnerUsername string    `json:"owner_username,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url,omitempty"`
	ImagePublicID string    `json:"image_public_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsOwnedBy сообщает, принадлежит ли товар пользователю
func (p *Product) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}
