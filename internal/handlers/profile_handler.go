package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/utils"
)

// ProfileHandler handles the user's profile endpoints
type ProfileHandler struct {
	profiles ProfileService
	audit    AuditHistory
}

// NewProfileHandler creates a new profile handler instance
func NewProfileHandler(profiles ProfileService, audit AuditHistory) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, audit: audit}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, err := h.profiles.GetProfile(c.Request.Context(), utils.GetUserIDFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, user)
}

// UpdateEmergencyContact handles PUT /profile/emergency-contact
func (h *ProfileHandler) UpdateEmergencyContact(c *gin.Context) {
	var req models.EmergencyContactUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.profiles.UpdateEmergencyContact(c.Request.Context(), utils.GetUserIDFromContext(c), &req)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, user)
}

// GetAuditLog handles GET /profile/audit-log
func (h *ProfileHandler) GetAuditLog(c *gin.Context) {
	entries, err := h.audit.History(c.Request.Context(), utils.GetUserIDFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, gin.H{"data": entries})
}
