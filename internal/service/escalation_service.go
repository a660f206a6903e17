package service

import (
	"context"
	"errors"
	"strings"

	"github.com/carecompanion/carecompanion-api/internal/classifier"
	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/notification"
	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
	"github.com/carecompanion/carecompanion-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// EscalationPolicy holds the trigger and approval rules
type EscalationPolicy struct {
	RiskThreshold             float64
	RiskMood                  string
	RequireConsentForApproval bool
	QueueLimit                int
}

// EscalationDeps are the collaborators of EscalationService
type EscalationDeps struct {
	Escalations   EscalationStore
	Users         UserStore
	Notifications NotificationLogStore
	Transactor    Transactor
	Builder       PayloadBuilder
	Dispatcher    notification.Dispatcher
	Audit         *AuditService
	Metrics       *metrics.Metrics
}

// EscalationService implements the escalation state machine:
// pending is the initial state, approved and rejected are terminal.
type EscalationService struct {
	escalations   EscalationStore
	users         UserStore
	notifications NotificationLogStore
	tx            Transactor
	builder       PayloadBuilder
	dispatcher    notification.Dispatcher
	audit         *AuditService
	metrics       *metrics.Metrics
	policy        EscalationPolicy
	logger        *logrus.Logger
	now           func() int64
}

// NewEscalationService creates a new escalation service instance
func NewEscalationService(deps EscalationDeps, policy EscalationPolicy, logger *logrus.Logger) *EscalationService {
	return &EscalationService{
		escalations:   deps.Escalations,
		users:         deps.Users,
		notifications: deps.Notifications,
		tx:            deps.Transactor,
		builder:       deps.Builder,
		dispatcher:    deps.Dispatcher,
		audit:         deps.Audit,
		metrics:       deps.Metrics,
		policy:        policy,
		logger:        logger,
		now:           utils.GetCurrentTimeMillis,
	}
}

// Create opens a pending escalation when the signal is a risk mood above the
// threshold and the user holds standing consent. Otherwise it returns nil, nil.
func (s *EscalationService) Create(ctx context.Context, in *models.CreateEscalationInput) (*models.EscalationRequest, error) {
	if err := utils.ValidateUserID(in.UserID); err != nil {
		return nil, validationError(err)
	}
	if err := utils.ValidateConversationID(in.ConversationID); err != nil {
		return nil, validationError(err)
	}
	if err := utils.ValidateRiskScore(in.RiskScore); err != nil {
		return nil, validationError(err)
	}

	mood := strings.ToLower(strings.TrimSpace(in.Mood))
	if err := utils.ValidateMood(mood); err != nil {
		return nil, validationError(err)
	}

	if reason := s.filterReason(mood, in.RiskScore, in.UserHasStandingConsent); reason != "" {
		s.metrics.SignalsFiltered.WithLabelValues(reason).Inc()
		s.logger.WithFields(logrus.Fields{
			"conversation_id": in.ConversationID,
			"mood":            mood,
			"risk_score":      in.RiskScore,
			"reason":          reason,
		}).Debug("Signal did not open an escalation")
		return nil, nil
	}

	esc := &models.EscalationRequest{
		ID:               utils.GenerateEscalationID(),
		UserID:           in.UserID,
		ConversationID:   in.ConversationID,
		MessageContent:   utils.SanitizeString(in.MessageContent),
		MoodDetected:     mood,
		RiskScore:        in.RiskScore,
		Status:           models.EscalationStatusPending,
		UserConsentGiven: false,
		CreatedTime:      s.now(),
	}

	if err := s.escalations.Create(ctx, esc); err != nil {
		s.logger.WithError(err).WithField("conversation_id", in.ConversationID).Error("Failed to create escalation request")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}

	s.metrics.EscalationsCreated.Inc()
	s.audit.Record(ctx, in.UserID, models.AuditActionEscalationTriggered, map[string]interface{}{
		"conversation_id": in.ConversationID,
		"risk_score":      in.RiskScore,
	})

	s.logger.WithFields(logrus.Fields{
		"escalation_id":   esc.ID,
		"conversation_id": esc.ConversationID,
		"risk_score":      esc.RiskScore,
	}).Info("Escalation request created")

	return esc, nil
}

func (s *EscalationService) filterReason(mood string, score float64, consent bool) string {
	switch {
	case mood != s.policy.RiskMood:
		return metrics.FilterReasonMood
	case score <= s.policy.RiskThreshold:
		return metrics.FilterReasonThreshold
	case !consent:
		return metrics.FilterReasonConsent
	default:
		return ""
	}
}

// EvaluateSignal feeds a classified message of userID into Create, reading the
// user's standing consent from the profile
func (s *EscalationService) EvaluateSignal(ctx context.Context, userID, conversationID, messageContent string, c classifier.Classification) (*models.EscalationRequest, error) {
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load user profile")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if user == nil {
		return nil, errUserNotFound
	}

	return s.Create(ctx, &models.CreateEscalationInput{
		UserID:                 userID,
		ConversationID:         conversationID,
		MessageContent:         messageContent,
		Mood:                   c.Mood,
		RiskScore:              c.RiskScore,
		UserHasStandingConsent: user.ConsentGiven,
	})
}

// ConfirmConsent records the user's consent on the pending escalations of a
// conversation. Status does not change. Repeating the call is harmless.
func (s *EscalationService) ConfirmConsent(ctx context.Context, conversationID, userID string) error {
	if err := utils.ValidateConversationID(conversationID); err != nil {
		return validationError(err)
	}
	if err := utils.ValidateUserID(userID); err != nil {
		return validationError(err)
	}

	rows, err := s.escalations.MarkConsentForPending(ctx, conversationID, userID)
	if err != nil {
		s.logger.WithError(err).WithField("conversation_id", conversationID).Error("Failed to confirm escalation consent")
		return serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if rows == 0 {
		return errNoPendingConsent
	}

	s.audit.Record(ctx, userID, models.AuditActionEscalationConsent, map[string]interface{}{
		"conversation_id": conversationID,
		"escalations":     rows,
	})

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"escalations":     rows,
	}).Info("Escalation consent confirmed")

	return nil
}

// Approve moves a pending escalation to approved, dispatches the notification
// to the user's emergency contact and records the delivery. The status change,
// dispatch and delivery log share one transaction, so a failed dispatch leaves
// the escalation pending.
func (s *EscalationService) Approve(ctx context.Context, escalationID, moderator string) (*models.NotificationPayload, error) {
	if err := utils.ValidateEscalationID(escalationID); err != nil {
		return nil, validationError(err)
	}

	esc, err := s.loadEscalation(ctx, escalationID)
	if err != nil {
		return nil, err
	}
	if esc.Status != models.EscalationStatusPending {
		s.metrics.TransitionConflicts.WithLabelValues("approve").Inc()
		return nil, errNotPending
	}
	if s.policy.RequireConsentForApproval && !esc.UserConsentGiven {
		return nil, errConsentMissing
	}

	user, err := s.users.GetByID(ctx, esc.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to load escalation user")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if user == nil {
		return nil, errUserNotFound
	}

	payload, err := s.builder.Build(esc, user)
	if err != nil {
		s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to build notification")
		return nil, serviceerror.WrapServiceError(serviceerror.InternalServerError, err)
	}

	reviewedAt := s.now()
	payload.Channel = s.dispatcher.Channel()
	payload.SentTime = reviewedAt

	err = s.tx.WithTransaction(ctx, func(tx *database.Transaction) error {
		ok, err := s.escalations.MarkApprovedWithTx(ctx, tx, escalationID, moderator, reviewedAt, s.policy.RequireConsentForApproval)
		if err != nil {
			return serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
		}
		if !ok {
			return s.approveRefusal(ctx, escalationID)
		}

		status, err := s.dispatcher.Dispatch(ctx, payload)
		if err != nil {
			s.metrics.NotificationsSent.WithLabelValues(payload.Channel, "failed").Inc()
			return serviceerror.WrapServiceError(serviceerror.NotificationError, err)
		}
		payload.Status = status

		if err := s.notifications.CreateWithTx(ctx, tx, payload.ToLog()); err != nil {
			return serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, &serviceerror.ConflictError):
			s.metrics.TransitionConflicts.WithLabelValues("approve").Inc()
		case errors.Is(err, &serviceerror.ConsentRequiredError):
		default:
			s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to approve escalation")
		}
		return nil, asServiceError(err, serviceerror.DatabaseError)
	}

	s.metrics.Decisions.WithLabelValues(string(models.EscalationStatusApproved)).Inc()
	s.metrics.NotificationsSent.WithLabelValues(payload.Channel, payload.Status).Inc()
	s.audit.Record(ctx, esc.UserID, models.AuditActionEscalationApproved, map[string]interface{}{
		"escalation_id":   escalationID,
		"notification_id": payload.NotificationID,
		"channel":         payload.Channel,
		"moderator":       moderator,
	})

	s.logger.WithFields(logrus.Fields{
		"escalation_id":   escalationID,
		"notification_id": payload.NotificationID,
		"channel":         payload.Channel,
		"status":          payload.Status,
		"moderator":       moderator,
	}).Info("Escalation approved")

	return payload, nil
}

// approveRefusal explains why the conditional approve matched no row. A row
// that is still pending was held back by the consent requirement.
func (s *EscalationService) approveRefusal(ctx context.Context, escalationID string) error {
	current, err := s.escalations.GetByID(ctx, escalationID)
	if err != nil {
		return serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if current == nil {
		return errEscalationNotFound
	}
	if current.Status == models.EscalationStatusPending && s.policy.RequireConsentForApproval && !current.UserConsentGiven {
		return errConsentMissing
	}
	return errNotPending
}

// Reject moves a pending escalation to rejected. No notification is sent.
func (s *EscalationService) Reject(ctx context.Context, escalationID, moderator string) error {
	if err := utils.ValidateEscalationID(escalationID); err != nil {
		return validationError(err)
	}

	esc, err := s.loadEscalation(ctx, escalationID)
	if err != nil {
		return err
	}
	if esc.Status != models.EscalationStatusPending {
		s.metrics.TransitionConflicts.WithLabelValues("reject").Inc()
		return errNotPending
	}

	ok, err := s.escalations.MarkRejected(ctx, escalationID, moderator, s.now())
	if err != nil {
		s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to reject escalation")
		return serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if !ok {
		s.metrics.TransitionConflicts.WithLabelValues("reject").Inc()
		return errNotPending
	}

	s.metrics.Decisions.WithLabelValues(string(models.EscalationStatusRejected)).Inc()
	s.audit.Record(ctx, esc.UserID, models.AuditActionEscalationRejected, map[string]interface{}{
		"escalation_id": escalationID,
		"moderator":     moderator,
	})

	s.logger.WithFields(logrus.Fields{
		"escalation_id": escalationID,
		"moderator":     moderator,
	}).Info("Escalation rejected")

	return nil
}

// ListPending returns one page of the moderator queue, newest first, with the
// total number of pending escalations. The limit is clamped to the queue limit.
func (s *EscalationService) ListPending(ctx context.Context, limit, offset int) (*models.PendingPage, error) {
	if limit <= 0 || limit > s.policy.QueueLimit {
		limit = s.policy.QueueLimit
	}
	offset = utils.ValidateOffset(offset)

	pending, err := s.escalations.ListPending(ctx, limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list pending escalations")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}

	total, err := s.escalations.CountPending(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count pending escalations")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}

	return &models.PendingPage{Items: pending, Total: total, Limit: limit, Offset: offset}, nil
}

// GetEscalation returns a single escalation regardless of its state
func (s *EscalationService) GetEscalation(ctx context.Context, escalationID string) (*models.EscalationRequest, error) {
	if err := utils.ValidateEscalationID(escalationID); err != nil {
		return nil, validationError(err)
	}
	return s.loadEscalation(ctx, escalationID)
}

// ListNotifications returns the delivery log of an escalation
func (s *EscalationService) ListNotifications(ctx context.Context, escalationID string) ([]models.NotificationLog, error) {
	if _, err := s.GetEscalation(ctx, escalationID); err != nil {
		return nil, err
	}

	logs, err := s.notifications.GetByEscalationID(ctx, escalationID)
	if err != nil {
		s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to list notifications")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}

	return logs, nil
}

func (s *EscalationService) loadEscalation(ctx context.Context, escalationID string) (*models.EscalationRequest, error) {
	esc, err := s.escalations.GetByID(ctx, escalationID)
	if err != nil {
		s.logger.WithError(err).WithField("escalation_id", escalationID).Error("Failed to load escalation")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if esc == nil {
		return nil, errEscalationNotFound
	}
	return esc, nil
}
