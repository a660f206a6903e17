package service

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

// EscalationStore is the persistence contract of the escalation state machine.
// Implemented by dao.EscalationDAO.
type EscalationStore interface {
	Create(ctx context.Context, esc *models.EscalationRequest) error
	GetByID(ctx context.Context, escalationID string) (*models.EscalationRequest, error)
	MarkConsentForPending(ctx context.Context, conversationID, userID string) (int64, error)
	MarkApprovedWithTx(ctx context.Context, tx *database.Transaction, escalationID, reviewedBy string, reviewedAt int64, requireConsent bool) (bool, error)
	MarkRejected(ctx context.Context, escalationID, reviewedBy string, reviewedAt int64) (bool, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.PendingEscalation, error)
	CountPending(ctx context.Context) (int, error)
}

// UserStore reads and updates user profiles. Implemented by dao.UserDAO.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateEmergencyContact(ctx context.Context, userID string, consentGiven bool, contactName, contactPhone *string, updatedTime int64) (bool, error)
}

// AuditLogStore appends and reads audit entries. Implemented by dao.AuditLogDAO.
type AuditLogStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByUserHash(ctx context.Context, userIDHash string) ([]models.AuditLog, error)
}

// NotificationLogStore records deliveries. Implemented by dao.NotificationLogDAO.
type NotificationLogStore interface {
	CreateWithTx(ctx context.Context, tx *database.Transaction, entry *models.NotificationLog) error
	GetByEscalationID(ctx context.Context, escalationID string) ([]models.NotificationLog, error)
}

// Transactor runs fn in a single database transaction. Implemented by database.DB.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *database.Transaction) error) error
}

// PayloadBuilder renders the notification of an approved escalation.
// Implemented by notification.Builder.
type PayloadBuilder interface {
	Build(esc *models.EscalationRequest, user *models.User) (*models.NotificationPayload, error)
}
