package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

const escalationColumns = `
		E.ESCALATION_ID, E.USER_ID, E.CONVERSATION_ID, E.MESSAGE_CONTENT, E.MOOD_DETECTED,
		E.RISK_SCORE, E.STATUS, E.USER_CONSENT_GIVEN, E.CREATED_TIME, E.REVIEWED_TIME,
		E.NOTIFICATION_SENT_TIME, E.REVIEWED_BY`

// EscalationDAO handles database operations for escalation requests.
// Every status change is a conditional UPDATE on STATUS = 'pending', so a
// terminal request is never modified and concurrent reviewers cannot both win.
type EscalationDAO struct {
	db *database.DB
}

// NewEscalationDAO creates a new EscalationDAO instance
func NewEscalationDAO(db *database.DB) *EscalationDAO {
	return &EscalationDAO{db: db}
}

// Create inserts a new escalation request
func (dao *EscalationDAO) Create(ctx context.Context, esc *models.EscalationRequest) error {
	query := `
		INSERT INTO ESCALATION_REQUEST (
			ESCALATION_ID, USER_ID, CONVERSATION_ID, MESSAGE_CONTENT, MOOD_DETECTED,
			RISK_SCORE, STATUS, USER_CONSENT_GIVEN, CREATED_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		esc.ID,
		esc.UserID,
		esc.ConversationID,
		esc.MessageContent,
		esc.MoodDetected,
		esc.RiskScore,
		esc.Status,
		esc.UserConsentGiven,
		esc.CreatedTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create escalation request: %w", err)
	}

	return nil
}

// GetByID retrieves an escalation request. It returns nil, nil when the id is unknown.
func (dao *EscalationDAO) GetByID(ctx context.Context, escalationID string) (*models.EscalationRequest, error) {
	query := `SELECT` + escalationColumns + `
		FROM ESCALATION_REQUEST E
		WHERE E.ESCALATION_ID = ?
	`

	var esc models.EscalationRequest
	if err := dao.db.GetContext(ctx, &esc, query, escalationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get escalation request: %w", err)
	}

	return &esc, nil
}

// MarkConsentForPending sets the consent flag on the pending requests of a
// conversation and returns how many rows matched. Status is left untouched.
func (dao *EscalationDAO) MarkConsentForPending(ctx context.Context, conversationID, userID string) (int64, error) {
	query := `
		UPDATE ESCALATION_REQUEST
		SET USER_CONSENT_GIVEN = TRUE
		WHERE CONVERSATION_ID = ? AND USER_ID = ? AND STATUS = ?
	`

	result, err := dao.db.ExecContext(ctx, query, conversationID, userID, models.EscalationStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm escalation consent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// MarkApprovedWithTx moves a pending request to approved and stamps the review
// and notification times. It returns false when the request was not pending, or
// when requireConsent is set and the user has not consented.
func (dao *EscalationDAO) MarkApprovedWithTx(ctx context.Context, tx *database.Transaction, escalationID, reviewedBy string, reviewedAt int64, requireConsent bool) (bool, error) {
	query := `
		UPDATE ESCALATION_REQUEST
		SET STATUS = ?, REVIEWED_TIME = ?, NOTIFICATION_SENT_TIME = ?, REVIEWED_BY = ?
		WHERE ESCALATION_ID = ? AND STATUS = ?
	`
	if requireConsent {
		query += ` AND USER_CONSENT_GIVEN = TRUE`
	}

	result, err := tx.ExecContext(
		ctx,
		query,
		models.EscalationStatusApproved,
		reviewedAt,
		reviewedAt,
		reviewedBy,
		escalationID,
		models.EscalationStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to approve escalation request: %w", err)
	}

	return singleRowAffected(result)
}

// MarkRejected moves a pending request to rejected. The notification time stays NULL.
func (dao *EscalationDAO) MarkRejected(ctx context.Context, escalationID, reviewedBy string, reviewedAt int64) (bool, error) {
	query := `
		UPDATE ESCALATION_REQUEST
		SET STATUS = ?, REVIEWED_TIME = ?, REVIEWED_BY = ?
		WHERE ESCALATION_ID = ? AND STATUS = ?
	`

	result, err := dao.db.ExecContext(
		ctx,
		query,
		models.EscalationStatusRejected,
		reviewedAt,
		reviewedBy,
		escalationID,
		models.EscalationStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to reject escalation request: %w", err)
	}

	return singleRowAffected(result)
}

// ListPending returns pending requests joined with the owning user's profile, newest first
func (dao *EscalationDAO) ListPending(ctx context.Context, limit, offset int) ([]models.PendingEscalation, error) {
	query := `SELECT` + escalationColumns + `,
		U.NAME AS USER_NAME, U.EMAIL AS USER_EMAIL,
		U.EMERGENCY_CONTACT_NAME, U.EMERGENCY_CONTACT_PHONE
		FROM ESCALATION_REQUEST E
		LEFT JOIN USER_PROFILE U ON U.USER_ID = E.USER_ID
		WHERE E.STATUS = ?
		ORDER BY E.CREATED_TIME DESC
		LIMIT ? OFFSET ?
	`

	pending := []models.PendingEscalation{}
	if err := dao.db.SelectContext(ctx, &pending, query, models.EscalationStatusPending, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list pending escalations: %w", err)
	}

	return pending, nil
}

// CountPending returns the number of pending requests
func (dao *EscalationDAO) CountPending(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM ESCALATION_REQUEST WHERE STATUS = ?`

	var count int
	if err := dao.db.GetContext(ctx, &count, query, models.EscalationStatusPending); err != nil {
		return 0, fmt.Errorf("failed to count pending escalations: %w", err)
	}

	return count, nil
}

func singleRowAffected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}
