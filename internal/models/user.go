package models

// User represents a row of the USER_PROFILE table
type User struct {
	ID                    string  `db:"USER_ID" json:"id"`
	Email                 string  `db:"EMAIL" json:"email"`
	Name                  string  `db:"NAME" json:"name"`
	ConsentGiven          bool    `db:"CONSENT_GIVEN" json:"consentGiven"`
	EmergencyContactName  *string `db:"EMERGENCY_CONTACT_NAME" json:"emergencyContactName,omitempty"`
	EmergencyContactPhone *string `db:"EMERGENCY_CONTACT_PHONE" json:"emergencyContactPhone,omitempty"`
	CreatedTime           int64   `db:"CREATED_TIME" json:"createdTime"`
	UpdatedTime           int64   `db:"UPDATED_TIME" json:"updatedTime"`
}

// EmergencyContactUpdateRequest is the payload of PUT /profile/emergency-contact
type EmergencyContactUpdateRequest struct {
	ConsentGiven          *bool   `json:"consentGiven" binding:"required"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`
}
