package events

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher - мок Publisher для тестов сервисов
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *MockPublisher) Close() {}
