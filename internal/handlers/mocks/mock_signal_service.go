package mocks

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/classifier"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSignalService is a mock implementation of handlers.SignalService
type MockSignalService struct {
	mock.Mock
}

func (m *MockSignalService) EvaluateSignal(ctx context.Context, userID, conversationID, messageContent string, c classifier.Classification) (*models.EscalationRequest, error) {
	args := m.Called(ctx, userID, conversationID, messageContent, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscalationRequest), args.Error(1)
}

func (m *MockSignalService) ConfirmConsent(ctx context.Context, conversationID, userID string) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}
