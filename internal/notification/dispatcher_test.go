package notification

import (
	"context"
	"testing"

	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestMockDispatcher(t *testing.T) {
	d := NewMockDispatcher(testLogger())

	status, err := d.Dispatch(context.Background(), &models.NotificationPayload{EscalationID: "ESC-1"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusMockSent, status)
	assert.Equal(t, "mock", d.Channel())
}

func TestNewDispatcher(t *testing.T) {
	d, err := NewDispatcher(&config.NotificationConfig{Provider: config.ProviderMock}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &MockDispatcher{}, d)

	d, err = NewDispatcher(&config.NotificationConfig{
		Provider: config.ProviderWebhook,
		Webhook:  config.WebhookConfig{BaseURL: "http://localhost:1"},
	}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &WebhookDispatcher{}, d)

	_, err = NewDispatcher(&config.NotificationConfig{Provider: "carrier-pigeon"}, testLogger())
	assert.ErrorContains(t, err, "unknown notification provider")
}
