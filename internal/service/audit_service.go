package service

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/privacy"
	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
	"github.com/carecompanion/carecompanion-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// AuditService writes the append-only audit trail. Entries are keyed by a
// pseudonym of the user id. Writes are best effort: a failure is logged and
// counted but never fails the operation being audited.
type AuditService struct {
	store         AuditLogStore
	pseudonymizer *privacy.Pseudonymizer
	metrics       *metrics.Metrics
	logger        *logrus.Logger
}

// NewAuditService creates a new audit service instance
func NewAuditService(store AuditLogStore, pseudonymizer *privacy.Pseudonymizer, m *metrics.Metrics, logger *logrus.Logger) *AuditService {
	return &AuditService{
		store:         store,
		pseudonymizer: pseudonymizer,
		metrics:       m,
		logger:        logger,
	}
}

// Record appends an audit entry for userID
func (s *AuditService) Record(ctx context.Context, userID string, action models.AuditAction, details map[string]interface{}) {
	userHash := s.pseudonymizer.Pseudonymize(userID)
	logFields := logrus.Fields{
		"user_hash": userHash,
		"action":    action,
	}

	payload, err := models.NewJSON(details)
	if err != nil {
		s.fail(logFields, err)
		return
	}

	entry := &models.AuditLog{
		ID:         utils.GenerateAuditID(),
		UserIDHash: userHash,
		Action:     action,
		Details:    payload,
		ActionTime: utils.GetCurrentTimeMillis(),
	}

	// The audited change is already committed, so a cancelled request must
	// not drop its audit entry.
	if err := s.store.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.fail(logFields, err)
		return
	}

	s.logger.WithFields(logFields).WithField("audit_id", entry.ID).Debug("Audit entry recorded")
}

// History returns the audit trail of userID, oldest first
func (s *AuditService) History(ctx context.Context, userID string) ([]models.AuditLog, error) {
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, validationError(err)
	}

	entries, err := s.store.ListByUserHash(ctx, s.pseudonymizer.Pseudonymize(userID))
	if err != nil {
		s.logger.WithError(err).Error("Failed to list audit entries")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}

	return entries, nil
}

func (s *AuditService) fail(fields logrus.Fields, err error) {
	s.metrics.AuditWriteFailures.Inc()
	s.logger.WithFields(fields).WithError(err).Error("Failed to record audit entry")
}
