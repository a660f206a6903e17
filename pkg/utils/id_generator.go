package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a bare UUID
func GenerateID() string {
	return uuid.New().String()
}

// GenerateEscalationID generates a unique escalation request ID
func GenerateEscalationID() string {
	return "ESC-" + uuid.New().String()
}

// GenerateAuditID generates a unique audit log ID
func GenerateAuditID() string {
	return "AUDIT-" + uuid.New().String()
}

// GenerateNotificationID generates a unique notification log ID
func GenerateNotificationID() string {
	return "NOTIF-" + uuid.New().String()
}

// IsValidUUID checks if a string is a valid UUID
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
