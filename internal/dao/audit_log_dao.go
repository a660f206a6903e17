package dao

import (
	"context"
	"fmt"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

// AuditLogDAO appends audit entries. The table is append-only, so there is no
// update or delete.
type AuditLogDAO struct {
	db *database.DB
}

// NewAuditLogDAO creates a new AuditLogDAO instance
func NewAuditLogDAO(db *database.DB) *AuditLogDAO {
	return &AuditLogDAO{db: db}
}

// Create inserts a new audit entry
func (dao *AuditLogDAO) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO AUDIT_LOG (AUDIT_ID, USER_ID_HASH, ACTION, DETAILS, ACTION_TIME)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(ctx, query, entry.ID, entry.UserIDHash, entry.Action, entry.Details, entry.ActionTime)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// ListByUserHash returns the audit trail for one pseudonymised user, oldest first
func (dao *AuditLogDAO) ListByUserHash(ctx context.Context, userIDHash string) ([]models.AuditLog, error) {
	query := `
		SELECT AUDIT_ID, USER_ID_HASH, ACTION, DETAILS, ACTION_TIME
		FROM AUDIT_LOG
		WHERE USER_ID_HASH = ?
		ORDER BY ACTION_TIME ASC
	`

	entries := []models.AuditLog{}
	if err := dao.db.SelectContext(ctx, &entries, query, userIDHash); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return entries, nil
}
