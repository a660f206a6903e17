package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramDispatcher relays notifications to an operations chat through the
// Telegram Bot API. The on-call responder then contacts the emergency contact.
type TelegramDispatcher struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *logrus.Logger
}

// NewTelegramDispatcher authenticates the bot and returns a dispatcher for cfg.ChatID
func NewTelegramDispatcher(cfg *config.TelegramConfig, logger *logrus.Logger) (*TelegramDispatcher, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	timeout := 10 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.WithField("bot", bot.Self.UserName).Info("Telegram notification channel ready")

	return &TelegramDispatcher{bot: bot, chatID: cfg.ChatID, logger: logger}, nil
}

func (d *TelegramDispatcher) Channel() string { return config.ProviderTelegram }

// Dispatch sends the alert. The bot client has no context support, so ctx is
// only checked before sending.
func (d *TelegramDispatcher) Dispatch(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := tgbotapi.NewMessage(d.chatID, formatTelegramAlert(payload))
	msg.DisableWebPagePreview = true

	sent, err := d.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("failed to send telegram alert: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"escalation_id": payload.EscalationID,
		"message_id":    sent.MessageID,
	}).Info("Telegram alert sent")

	return models.NotificationStatusTelegramSent, nil
}

func formatTelegramAlert(payload *models.NotificationPayload) string {
	recipient := payload.RecipientName
	if recipient == "" {
		recipient = "emergency contact"
	}
	return fmt.Sprintf("CareCompanion escalation %s approved.\nPlease contact %s at %s with the message below.\n\n%s",
		payload.EscalationID, recipient, payload.RecipientPhone, payload.Body)
}
