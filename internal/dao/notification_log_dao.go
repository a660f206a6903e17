package dao

import (
	"context"
	"fmt"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

// NotificationLogDAO handles the delivery log of approved escalations
type NotificationLogDAO struct {
	db *database.DB
}

// NewNotificationLogDAO creates a new NotificationLogDAO instance
func NewNotificationLogDAO(db *database.DB) *NotificationLogDAO {
	return &NotificationLogDAO{db: db}
}

// CreateWithTx records a delivery inside the approval transaction
func (dao *NotificationLogDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.NotificationLog) error {
	query := `
		INSERT INTO NOTIFICATION_LOG (
			NOTIFICATION_ID, ESCALATION_ID, RECIPIENT_PHONE, BODY, CHANNEL, STATUS, SENT_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.EscalationID,
		entry.RecipientPhone,
		entry.Body,
		entry.Channel,
		entry.Status,
		entry.SentTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification log with transaction: %w", err)
	}

	return nil
}

// GetByEscalationID lists deliveries for an escalation, newest first
func (dao *NotificationLogDAO) GetByEscalationID(ctx context.Context, escalationID string) ([]models.NotificationLog, error) {
	query := `
		SELECT NOTIFICATION_ID, ESCALATION_ID, RECIPIENT_PHONE, BODY, CHANNEL, STATUS, SENT_TIME
		FROM NOTIFICATION_LOG
		WHERE ESCALATION_ID = ?
		ORDER BY SENT_TIME DESC
	`

	logs := []models.NotificationLog{}
	if err := dao.db.SelectContext(ctx, &logs, query, escalationID); err != nil {
		return nil, fmt.Errorf("failed to get notification logs: %w", err)
	}

	return logs, nil
}
