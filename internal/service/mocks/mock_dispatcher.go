package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock implementation of notification.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Channel() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDispatcher) Dispatch(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}
