package notification

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/pkg/utils"
)

const bodyTemplate = `Hi {{ .ContactName | default "there" }}, this is a notification from CareCompanion.

We received a consented message about {{ .UserName }} that indicates they may be in distress. Please check on them kindly.

Suggested approach: 'Hey {{ .UserName }}, I got a message and I'm worried, are you okay? Can I help?'

If this is an emergency, please call local emergency services immediately.

Crisis Helplines:
{{- range .Helplines }}
- {{ .Name }}: {{ .Contact }}
{{- end }}`

type bodyData struct {
	ContactName string
	UserName    string
	Helplines   []config.Helpline
}

// Builder renders the emergency-contact notification for an approved escalation
type Builder struct {
	tmpl      *template.Template
	helplines []config.Helpline
}

// NewBuilder creates a Builder listing helplines in every message.
// The default crisis lines are used when helplines is empty.
func NewBuilder(helplines []config.Helpline) (*Builder, error) {
	if len(helplines) == 0 {
		helplines = config.DefaultHelplines()
	}

	tmpl, err := template.New("notification").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(bodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification template: %w", err)
	}

	return &Builder{tmpl: tmpl, helplines: helplines}, nil
}

// Build renders the payload for esc on behalf of user. Channel and status
// are filled in by the dispatcher.
func (b *Builder) Build(esc *models.EscalationRequest, user *models.User) (*models.NotificationPayload, error) {
	contactName := strings.TrimSpace(deref(user.EmergencyContactName))
	data := bodyData{
		ContactName: contactName,
		UserName:    user.Name,
		Helplines:   b.helplines,
	}

	var body strings.Builder
	if err := b.tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render notification body: %w", err)
	}

	phone := strings.TrimSpace(deref(user.EmergencyContactPhone))
	if phone == "" {
		phone = models.RecipientPhoneUnknown
	}

	return &models.NotificationPayload{
		NotificationID: utils.GenerateNotificationID(),
		EscalationID:   esc.ID,
		UserName:       user.Name,
		RecipientName:  contactName,
		RecipientPhone: phone,
		Body:           body.String(),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
