package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы предложения обмена
const (
	TradePending  = "pending"
	TradeAccepted = "accepted"
	TradeRejected = "rejected"
)

// Decision - ответ получателя на предложение обмена
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Trade представляет предложение об обмене
type Trade struct {
	ID          uuid.UUID `json:"id"`
	RequesterID uuid.UUID `json:"requester_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Status      string    `json:"status"` // pending, accepted, rejected
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Дополнительные поля для API
	RequesterUsername string     `json:"requester_username,omitempty"`
	ReceiverUsername  string     `json:"receiver_username,omitempty"`
	ProductName       string     `json:"product_name,omitempty"`
	ChatID            *uuid.UUID `json:"chat_id,omitempty"`
}

// IsPending сообщает, ожидает ли предложение ответа
func (t *Trade) IsPending() bool {
	return t.Status == TradePending
}

// Направления выборки обменов
const (
	TradeTypeAll      = "all"
	TradeTypeIncoming = "incoming"
	TradeTypeOutgoing = "outgoing"
)

// TradeFilter задает выборку обменов пользователя
type TradeFilter struct {
	UserID uuid.UUID
	Type   string // all, incoming, outgoing
	Status string // all, pending, accepted, rejected
}
