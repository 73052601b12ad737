package cache

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// MockSearchCache - мок SearchCache для тестов сервисов
type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) Get(ctx context.Context, query string) ([]models.Product, int64, bool, error) {
	args := m.Called(ctx, query)
	products, _ := args.Get(0).([]models.Product)
	gen, _ := args.Get(1).(int64)
	return products, gen, args.Bool(2), args.Error(3)
}

func (m *MockSearchCache) Set(ctx context.Context, gen int64, query string, products []models.Product) error {
	args := m.Called(ctx, gen, query, products)
	return args.Error(0)
}

func (m *MockSearchCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
