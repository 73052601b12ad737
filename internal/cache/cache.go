// Package cache кэширует результаты поиска товаров.
package cache

import (
	"context"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// SearchCache хранит результаты поиска по строке запроса
type SearchCache interface {
	// Get возвращает результаты, поколение кэша, в котором искал, и false при промахе
	Get(ctx context.Context, query string) ([]models.Product, int64, bool, error)
	// Set сохраняет результаты в поколении gen, полученном от Get. Если кэш
	// был сброшен после Get, запись попадает в уже недействительное поколение.
	Set(ctx context.Context, gen int64, query string, products []models.Product) error
	// Invalidate делает все сохраненные результаты недействительными
	Invalidate(ctx context.Context) error
}

// Nop не кэширует ничего
type Nop struct{}

func (Nop) Get(ctx context.Context, query string) ([]models.Product, int64, bool, error) {
	return nil, 0, false, nil
}

func (Nop) Set(ctx context.Context, gen int64, query string, products []models.Product) error {
	return nil
}

func (Nop) Invalidate(ctx context.Context) error { return nil }
