package notification

import (
	"context"
	"fmt"

	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/sirupsen/logrus"
)

// Dispatcher delivers a rendered notification over one channel
type Dispatcher interface {
	// Channel names the delivery channel recorded in the notification log
	Channel() string
	// Dispatch delivers payload and returns the delivery status
	Dispatch(ctx context.Context, payload *models.NotificationPayload) (string, error)
}

// NewDispatcher returns the dispatcher selected by cfg.Provider
func NewDispatcher(cfg *config.NotificationConfig, logger *logrus.Logger) (Dispatcher, error) {
	switch cfg.Provider {
	case "", config.ProviderMock:
		return NewMockDispatcher(logger), nil
	case config.ProviderWebhook:
		return NewWebhookDispatcher(&cfg.Webhook, logger), nil
	case config.ProviderTelegram:
		return NewTelegramDispatcher(&cfg.Telegram, logger)
	default:
		return nil, fmt.Errorf("unknown notification provider: %q", cfg.Provider)
	}
}

// MockDispatcher records the notification without contacting anyone
type MockDispatcher struct {
	logger *logrus.Logger
}

// NewMockDispatcher creates a MockDispatcher
func NewMockDispatcher(logger *logrus.Logger) *MockDispatcher {
	return &MockDispatcher{logger: logger}
}

func (d *MockDispatcher) Channel() string { return config.ProviderMock }

func (d *MockDispatcher) Dispatch(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	d.logger.WithFields(logrus.Fields{
		"notification_id": payload.NotificationID,
		"escalation_id":   payload.EscalationID,
		"channel":         d.Channel(),
	}).Info("Mock notification sent")
	return models.NotificationStatusMockSent, nil
}
