package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockReviewService is a mock implementation of handlers.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) ListPending(ctx context.Context, limit, offset int) (*models.PendingPage, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingPage), args.Error(1)
}

func (m *MockReviewService) GetEscalation(ctx context.Context, escalationID string) (*models.EscalationRequest, error) {
	args := m.Called(ctx, escalationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscalationRequest), args.Error(1)
}

func (m *MockReviewService) ListNotifications(ctx context.Context, escalationID string) ([]models.NotificationLog, error) {
	args := m.Called(ctx, escalationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotificationLog), args.Error(1)
}

func (m *MockReviewService) Approve(ctx context.Context, escalationID, moderator string) (*models.NotificationPayload, error) {
	args := m.Called(ctx, escalationID, moderator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.NotificationPayload), args.Error(1)
}

func (m *MockReviewService) Reject(ctx context.Context, escalationID, moderator string) error {
	args := m.Called(ctx, escalationID, moderator)
	return args.Error(0)
}
