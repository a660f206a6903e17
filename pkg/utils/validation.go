package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\+?\(?[0-9][0-9 ()\-]{5,29}$`)

// ValidateEscalationID validates escalation ID format
func ValidateEscalationID(escalationID string) error {
	return validateIdentifier("escalation ID", escalationID)
}

// ValidateConversationID validates conversation ID format
func ValidateConversationID(conversationID string) error {
	return validateIdentifier("conversation ID", conversationID)
}

// ValidateUserID validates user ID format
func ValidateUserID(userID string) error {
	return validateIdentifier("user ID", userID)
}

func validateIdentifier(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	if len(value) > 255 {
		return fmt.Errorf("%s too long (max 255 characters)", name)
	}
	return nil
}

// ValidateRiskScore checks that a classifier score lies in [0, 1]
func ValidateRiskScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("risk score must be a number")
	}
	if score < 0 || score > 1 {
		return fmt.Errorf("risk score must be between 0 and 1, got %v", score)
	}
	return nil
}

// ValidateMood validates a detected mood label
func ValidateMood(mood string) error {
	if mood == "" {
		return fmt.Errorf("mood cannot be empty")
	}
	if len(mood) > 32 {
		return fmt.Errorf("mood too long (max 32 characters)")
	}
	return nil
}

// ValidatePhone validates a loosely formatted phone number
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("phone number cannot be empty")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number format")
	}
	return nil
}

// SanitizeString removes dangerous characters from user input
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// ValidateOffset validates pagination offset
func ValidateOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateMaxLength validates maximum string length
func ValidateMaxLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", fieldName, maxLength)
	}
	return nil
}
