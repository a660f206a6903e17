package models

// Disclaimer is returned by the health endpoint
const Disclaimer = "CareCompanion is not a substitute for professional care. If you are in immediate danger, call emergency services."

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Version    string `json:"version,omitempty"`
	Disclaimer string `json:"disclaimer"`
}
