package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/carecompanion/carecompanion-api/internal/models"
)

// UserDAO handles database operations for user profiles
type UserDAO struct {
	db *database.DB
}

// NewUserDAO creates a new UserDAO instance
func NewUserDAO(db *database.DB) *UserDAO {
	return &UserDAO{db: db}
}

// GetByID retrieves a user profile. It returns nil, nil when the user does not exist.
func (dao *UserDAO) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT USER_ID, EMAIL, NAME, CONSENT_GIVEN, EMERGENCY_CONTACT_NAME,
		       EMERGENCY_CONTACT_PHONE, CREATED_TIME, UPDATED_TIME
		FROM USER_PROFILE
		WHERE USER_ID = ?
	`

	var user models.User
	if err := dao.db.GetContext(ctx, &user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	return &user, nil
}

// UpdateEmergencyContact stores the user's standing consent and emergency contact.
// It returns false when the user does not exist.
func (dao *UserDAO) UpdateEmergencyContact(ctx context.Context, userID string, consentGiven bool, contactName, contactPhone *string, updatedTime int64) (bool, error) {
	query := `
		UPDATE USER_PROFILE
		SET CONSENT_GIVEN = ?, EMERGENCY_CONTACT_NAME = ?, EMERGENCY_CONTACT_PHONE = ?, UPDATED_TIME = ?
		WHERE USER_ID = ?
	`

	result, err := dao.db.ExecContext(ctx, query, consentGiven, contactName, contactPhone, updatedTime, userID)
	if err != nil {
		return false, fmt.Errorf("failed to update emergency contact: %w", err)
	}

	return singleRowAffected(result)
}
