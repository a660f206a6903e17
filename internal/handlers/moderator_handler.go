package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/utils"
)

// ModeratorHandler handles the moderator review endpoints
type ModeratorHandler struct {
	review ReviewService
}

// NewModeratorHandler creates a new moderator handler instance
func NewModeratorHandler(review ReviewService) *ModeratorHandler {
	return &ModeratorHandler{review: review}
}

// ListQueue handles GET /moderator/queue
func (h *ModeratorHandler) ListQueue(c *gin.Context) {
	page := utils.PaginationFromQuery(c)

	result, err := h.review.ListPending(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []models.PendingEscalation{}
	}
	utils.SendOKResponse(c, utils.PaginatedResponse{
		Data:     items,
		Metadata: utils.CalculatePaginationMetadata(result.Total, result.Limit, result.Offset),
	})
}

// GetEscalation handles GET /moderator/escalations/:escalationId
func (h *ModeratorHandler) GetEscalation(c *gin.Context) {
	esc, err := h.review.GetEscalation(c.Request.Context(), c.Param("escalationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, esc)
}

// ListNotifications handles GET /moderator/escalations/:escalationId/notifications
func (h *ModeratorHandler) ListNotifications(c *gin.Context) {
	logs, err := h.review.ListNotifications(c.Request.Context(), c.Param("escalationId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, gin.H{"data": logs})
}

// Approve handles POST /moderator/escalations/:escalationId/approve
func (h *ModeratorHandler) Approve(c *gin.Context) {
	payload, err := h.review.Approve(c.Request.Context(), c.Param("escalationId"), utils.GetModeratorFromContext(c))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.ApprovalResponse{
		Message:      "Escalation approved and notification sent",
		Notification: payload,
	})
}

// Reject handles POST /moderator/escalations/:escalationId/reject
func (h *ModeratorHandler) Reject(c *gin.Context) {
	if err := h.review.Reject(c.Request.Context(), c.Param("escalationId"), utils.GetModeratorFromContext(c)); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Escalation rejected", nil))
}
