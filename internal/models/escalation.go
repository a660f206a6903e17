package models

// EscalationStatus is the lifecycle state of an escalation request
type EscalationStatus string

const (
	EscalationStatusPending  EscalationStatus = "pending"
	EscalationStatusApproved EscalationStatus = "approved"
	EscalationStatusRejected EscalationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed from s
func (s EscalationStatus) IsTerminal() bool {
	return s == EscalationStatusApproved || s == EscalationStatusRejected
}

// EscalationRequest represents a row of the ESCALATION_REQUEST table
type EscalationRequest struct {
	ID                   string           `db:"ESCALATION_ID" json:"id"`
	UserID               string           `db:"USER_ID" json:"userId"`
	ConversationID       string           `db:"CONVERSATION_ID" json:"conversationId"`
	MessageContent       string           `db:"MESSAGE_CONTENT" json:"messageContent"`
	MoodDetected         string           `db:"MOOD_DETECTED" json:"moodDetected"`
	RiskScore            float64          `db:"RISK_SCORE" json:"riskScore"`
	Status               EscalationStatus `db:"STATUS" json:"status"`
	UserConsentGiven     bool             `db:"USER_CONSENT_GIVEN" json:"userConsentGiven"`
	CreatedTime          int64            `db:"CREATED_TIME" json:"createdTime"`
	ReviewedTime         *int64           `db:"REVIEWED_TIME" json:"reviewedTime,omitempty"`
	NotificationSentTime *int64           `db:"NOTIFICATION_SENT_TIME" json:"notificationSentTime,omitempty"`
	ReviewedBy           *string          `db:"REVIEWED_BY" json:"reviewedBy,omitempty"`
}

// PendingEscalation is an escalation enriched with the owning user's contact details
// for the moderator queue
type PendingEscalation struct {
	EscalationRequest
	UserName              *string `db:"USER_NAME" json:"userName,omitempty"`
	UserEmail             *string `db:"USER_EMAIL" json:"userEmail,omitempty"`
	EmergencyContactName  *string `db:"EMERGENCY_CONTACT_NAME" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `db:"EMERGENCY_CONTACT_PHONE" json:"emergencyContactPhone,omitempty"`
}

// PendingPage is one page of the moderator queue. Limit and Offset are the
// values the query actually ran with after clamping.
type PendingPage struct {
	Items  []PendingEscalation
	Total  int
	Limit  int
	Offset int
}

// CreateEscalationInput carries a classified message into the escalation state machine
type CreateEscalationInput struct {
	UserID                 string
	ConversationID         string
	MessageContent         string
	Mood                   string
	RiskScore              float64
	UserHasStandingConsent bool
}

// RiskSignalRequest is the payload of POST /conversations/{id}/risk-signals
type RiskSignalRequest struct {
	MessageContent string   `json:"messageContent" binding:"required"`
	Mood           string   `json:"mood" binding:"required"`
	RiskScore      *float64 `json:"riskScore" binding:"required"`
}

// ClassificationRequest is the payload of POST /conversations/{id}/classifications
type ClassificationRequest struct {
	MessageContent string `json:"messageContent" binding:"required"`
	ModelOutput    string `json:"modelOutput" binding:"required"`
}

// RiskSignalResponse reports whether a signal opened an escalation
type RiskSignalResponse struct {
	EscalationTriggered bool               `json:"escalationTriggered"`
	Escalation          *EscalationRequest `json:"escalation,omitempty"`
}

// ClassificationResponse is the parsed model reply plus the escalation outcome
type ClassificationResponse struct {
	Mood      string  `json:"mood"`
	RiskScore float64 `json:"riskScore"`
	Response  string  `json:"response"`
	RiskSignalResponse
}

// ConsentConfirmationRequest is the payload of POST /escalations/consent
type ConsentConfirmationRequest struct {
	ConversationID string `json:"conversationId"`
}

// ApprovalResponse is returned to the moderator after a successful approval
type ApprovalResponse struct {
	Message      string               `json:"message"`
	Notification *NotificationPayload `json:"notification"`
}
