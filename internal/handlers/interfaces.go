package handlers

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/classifier"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

// SignalService opens escalations and records user consent.
// Implemented by service.EscalationService.
type SignalService interface {
	EvaluateSignal(ctx context.Context, userID, conversationID, messageContent string, c classifier.Classification) (*models.EscalationRequest, error)
	ConfirmConsent(ctx context.Context, conversationID, userID string) error
}

// ReviewService is the moderator side of the escalation workflow.
// Implemented by service.EscalationService.
type ReviewService interface {
	ListPending(ctx context.Context, limit, offset int) (*models.PendingPage, error)
	GetEscalation(ctx context.Context, escalationID string) (*models.EscalationRequest, error)
	ListNotifications(ctx context.Context, escalationID string) ([]models.NotificationLog, error)
	Approve(ctx context.Context, escalationID, moderator string) (*models.NotificationPayload, error)
	Reject(ctx context.Context, escalationID, moderator string) error
}

// ProfileService manages standing consent and the emergency contact.
// Implemented by service.ProfileService.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateEmergencyContact(ctx context.Context, userID string, req *models.EmergencyContactUpdateRequest) (*models.User, error)
}

// AuditHistory reads a user's audit trail. Implemented by service.AuditService.
type AuditHistory interface {
	History(ctx context.Context, userID string) ([]models.AuditLog, error)
}

// HealthChecker reports database reachability. Implemented by database.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
