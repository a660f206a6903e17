package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/system/correlation"
	"github.com/sirupsen/logrus"
)

const maxResponseBody = 64 << 10

// WebhookDispatcher posts notifications to an SMS gateway webhook
type WebhookDispatcher struct {
	httpClient *http.Client
	config     *config.WebhookConfig
	logger     *logrus.Logger
	backoff    time.Duration
}

// webhookRequest is the JSON body sent to the gateway
type webhookRequest struct {
	NotificationID string `json:"notificationId"`
	EscalationID   string `json:"escalationId"`
	To             string `json:"to"`
	RecipientName  string `json:"recipientName,omitempty"`
	Body           string `json:"body"`
}

// webhookResponse is the optional JSON reply of the gateway
type webhookResponse struct {
	Status string `json:"status"`
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(cfg *config.WebhookConfig, logger *logrus.Logger) *WebhookDispatcher {
	timeout := 10 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &WebhookDispatcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config:  cfg,
		logger:  logger,
		backoff: 500 * time.Millisecond,
	}
}

func (d *WebhookDispatcher) Channel() string { return config.ProviderWebhook }

// Dispatch posts payload, retrying transport errors and 5xx responses up to
// RetryAttempts more times
func (d *WebhookDispatcher) Dispatch(ctx context.Context, payload *models.NotificationPayload) (string, error) {
	jsonData, err := json.Marshal(webhookRequest{
		NotificationID: payload.NotificationID,
		EscalationID:   payload.EscalationID,
		To:             payload.RecipientPhone,
		RecipientName:  payload.RecipientName,
		Body:           payload.Body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal webhook request: %w", err)
	}

	attempts := d.config.RetryAttempts + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		status, retryable, err := d.post(ctx, jsonData, payload)
		if err == nil {
			return status, nil
		}
		lastErr = err

		d.logger.WithError(err).WithFields(logrus.Fields{
			"escalation_id": payload.EscalationID,
			"attempt":       attempt,
			"max_attempts":  attempts,
		}).Warn("Webhook notification attempt failed")

		if !retryable || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("webhook notification cancelled: %w", ctx.Err())
		case <-time.After(d.backoff * time.Duration(attempt)):
		}
	}

	return "", lastErr
}

func (d *WebhookDispatcher) post(ctx context.Context, body []byte, payload *models.NotificationPayload) (string, bool, error) {
	url := d.config.GetURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := correlation.FromContext(ctx); id != "" {
		req.Header.Set(correlation.HeaderName, id)
	}

	startTime := time.Now()
	resp, err := d.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		return "", ctx.Err() == nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	fields := logrus.Fields{
		"status_code":   resp.StatusCode,
		"duration":      duration,
		"escalation_id": payload.EscalationID,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	// The gateway accepted the message, so it must not be posted again even
	// when the reply body is unreadable
	if readErr != nil {
		d.logger.WithFields(fields).WithError(readErr).Warn("Failed to read accepted webhook response")
		return models.NotificationStatusSent, false, nil
	}

	var parsed webhookResponse
	if len(respBody) > 0 && json.Unmarshal(respBody, &parsed) == nil && parsed.Status != "" {
		fields["gateway_status"] = parsed.Status
	}
	d.logger.WithFields(fields).Debug("Webhook response received")

	return models.NotificationStatusSent, false, nil
}
