package service

import (
	"context"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
	"github.com/carecompanion/carecompanion-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ProfileService manages the user's standing consent and emergency contact
type ProfileService struct {
	users  UserStore
	audit  *AuditService
	logger *logrus.Logger
}

// NewProfileService creates a new profile service instance
func NewProfileService(users UserStore, audit *AuditService, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		users:  users,
		audit:  audit,
		logger: logger,
	}
}

// GetProfile returns the profile of userID
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
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

	return user, nil
}

// UpdateEmergencyContact sets standing consent and the emergency contact.
// Blank contact fields are stored as NULL.
func (s *ProfileService) UpdateEmergencyContact(ctx context.Context, userID string, req *models.EmergencyContactUpdateRequest) (*models.User, error) {
	if err := utils.ValidateUserID(userID); err != nil {
		return nil, validationError(err)
	}
	if req.ConsentGiven == nil {
		return nil, serviceerror.CustomServiceError(serviceerror.ValidationError, "consentGiven is required")
	}

	name := normalizeOptional(req.EmergencyContactName)
	phone := normalizeOptional(req.EmergencyContactPhone)

	if name != nil {
		if err := utils.ValidateMaxLength("emergencyContactName", *name, 255); err != nil {
			return nil, validationError(err)
		}
	}
	if phone != nil {
		if err := utils.ValidatePhone(*phone); err != nil {
			return nil, validationError(err)
		}
	}

	ok, err := s.users.UpdateEmergencyContact(ctx, userID, *req.ConsentGiven, name, phone, utils.GetCurrentTimeMillis())
	if err != nil {
		s.logger.WithError(err).Error("Failed to update emergency contact")
		return nil, serviceerror.WrapServiceError(serviceerror.DatabaseError, err)
	}
	if !ok {
		return nil, errUserNotFound
	}

	s.audit.Record(ctx, userID, models.AuditActionEmergencyContactUpdated, map[string]interface{}{
		"consent_given": *req.ConsentGiven,
		"has_contact":   phone != nil,
	})

	s.logger.WithField("consent_given", *req.ConsentGiven).Info("Emergency contact updated")

	return s.GetProfile(ctx, userID)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := utils.SanitizeString(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
