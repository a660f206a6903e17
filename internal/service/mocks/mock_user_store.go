package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockUserStore is a mock implementation of UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) UpdateEmergencyContact(ctx context.Context, userID string, consentGiven bool, contactName, contactPhone *string, updatedTime int64) (bool, error) {
	args := m.Called(ctx, userID, consentGiven, contactName, contactPhone, updatedTime)
	return args.Bool(0), args.Error(1)
}
