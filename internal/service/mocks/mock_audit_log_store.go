package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAuditLogStore is a mock implementation of AuditLogStore
type MockAuditLogStore struct {
	mock.Mock
}

func (m *MockAuditLogStore) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogStore) ListByUserHash(ctx context.Context, userIDHash string) ([]models.AuditLog, error) {
	args := m.Called(ctx, userIDHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLog), args.Error(1)
}
