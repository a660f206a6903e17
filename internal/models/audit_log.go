package models

// AuditAction names an auditable step of the escalation workflow
type AuditAction string

const (
	AuditActionEscalationTriggered     AuditAction = "escalation_triggered"
	AuditActionEscalationConsent       AuditAction = "escalation_consent_confirmed"
	AuditActionEscalationApproved      AuditAction = "escalation_approved"
	AuditActionEscalationRejected      AuditAction = "escalation_rejected"
	AuditActionEmergencyContactUpdated AuditAction = "emergency_contact_updated"
)

// AuditLog represents a row of the append-only AUDIT_LOG table.
// USER_ID_HASH is a keyed one-way hash, never the raw user id.
type AuditLog struct {
	ID         string      `db:"AUDIT_ID" json:"id"`
	UserIDHash string      `db:"USER_ID_HASH" json:"userIdHash"`
	Action     AuditAction `db:"ACTION" json:"action"`
	Details    JSON        `db:"DETAILS" json:"details,omitempty"`
	ActionTime int64       `db:"ACTION_TIME" json:"actionTime"`
}
