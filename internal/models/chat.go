package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength - максимальная длина сообщения в символах
const MaxMessageLength = 500

// Chat представляет чат между участниками принятого обмена
type Chat struct {
	ID           uuid.UUID     `json:"id"`
	TradeID      uuid.UUID     `json:"trade_id"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Participant - участник чата
type Participant struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// HasParticipant сообщает, входит ли пользователь в чат
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Message представляет сообщение в чате
type Message struct {
	ID             uuid.UUID `json:"id"`
	ChatID         uuid.UUID `json:"chat_id"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
