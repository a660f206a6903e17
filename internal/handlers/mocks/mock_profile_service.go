package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileService is a mock implementation of handlers.ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileService) UpdateEmergencyContact(ctx context.Context, userID string, req *models.EmergencyContactUpdateRequest) (*models.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockAuditHistory is a mock implementation of handlers.AuditHistory
type MockAuditHistory struct {
	mock.Mock
}

func (m *MockAuditHistory) History(ctx context.Context, userID string) ([]models.AuditLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLog), args.Error(1)
}

// MockHealthChecker is a mock implementation of handlers.HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
