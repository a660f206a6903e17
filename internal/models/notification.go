package models

// Delivery statuses reported by notification channels
const (
	NotificationStatusMockSent     = "mock_sent"
	NotificationStatusSent         = "sent"
	NotificationStatusTelegramSent = "telegram_sent"
)

// RecipientPhoneUnknown is stored when the user has no emergency contact phone
const RecipientPhoneUnknown = "N/A"

// NotificationLog represents a row of the NOTIFICATION_LOG table
type NotificationLog struct {
	ID             string `db:"NOTIFICATION_ID" json:"id"`
	EscalationID   string `db:"ESCALATION_ID" json:"escalationId"`
	RecipientPhone string `db:"RECIPIENT_PHONE" json:"recipientPhone"`
	Body           string `db:"BODY" json:"body"`
	Channel        string `db:"CHANNEL" json:"channel"`
	Status         string `db:"STATUS" json:"status"`
	SentTime       int64  `db:"SENT_TIME" json:"sentTime"`
}

// NotificationPayload is the rendered notification for an approved escalation
type NotificationPayload struct {
	NotificationID string `json:"notificationId"`
	EscalationID   string `json:"escalationId"`
	UserName       string `json:"userName"`
	RecipientName  string `json:"recipientName,omitempty"`
	RecipientPhone string `json:"recipientPhone"`
	Body           string `json:"body"`
	Channel        string `json:"channel"`
	Status         string `json:"status"`
	SentTime       int64  `json:"sentTime"`
}

// ToLog converts the payload into its delivery log row
func (p *NotificationPayload) ToLog() *NotificationLog {
	return &NotificationLog{
		ID:             p.NotificationID,
		EscalationID:   p.EscalationID,
		RecipientPhone: p.RecipientPhone,
		Body:           p.Body,
		Channel:        p.Channel,
		Status:         p.Status,
		SentTime:       p.SentTime,
	}
}
