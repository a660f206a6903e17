package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/carecompanion/carecompanion-api/internal/classifier"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/utils"
)

// EscalationHandler handles the user facing escalation endpoints
type EscalationHandler struct {
	signals SignalService
}

// NewEscalationHandler creates a new escalation handler instance
func NewEscalationHandler(signals SignalService) *EscalationHandler {
	return &EscalationHandler{signals: signals}
}

// SubmitRiskSignal handles POST /conversations/:conversationId/risk-signals
func (h *EscalationHandler) SubmitRiskSignal(c *gin.Context) {
	var req models.RiskSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	signal := classifier.Classification{Mood: req.Mood, RiskScore: *req.RiskScore}
	esc, err := h.signals.EvaluateSignal(c.Request.Context(), utils.GetUserIDFromContext(c), c.Param("conversationId"), req.MessageContent, signal)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.RiskSignalResponse{
		EscalationTriggered: esc != nil,
		Escalation:          esc,
	})
}

// SubmitClassification handles POST /conversations/:conversationId/classifications.
// The raw model reply is parsed before it is evaluated as a risk signal.
func (h *EscalationHandler) SubmitClassification(c *gin.Context) {
	var req models.ClassificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}

	parsed := classifier.ParseReply(req.ModelOutput)
	esc, err := h.signals.EvaluateSignal(c.Request.Context(), utils.GetUserIDFromContext(c), c.Param("conversationId"), req.MessageContent, parsed)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.ClassificationResponse{
		Mood:      parsed.Mood,
		RiskScore: parsed.RiskScore,
		Response:  parsed.Response,
		RiskSignalResponse: models.RiskSignalResponse{
			EscalationTriggered: esc != nil,
			Escalation:          esc,
		},
	})
}

// ConfirmConsent handles POST /escalations/consent. The conversation is taken
// from the body, or from the conversation_id query parameter.
func (h *EscalationHandler) ConfirmConsent(c *gin.Context) {
	var req models.ConsentConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendBadRequestError(c, "Invalid request body", err.Error())
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = c.Query("conversation_id")
	}
	if req.ConversationID == "" {
		utils.SendValidationError(c, "conversationId is required")
		return
	}

	if err := h.signals.ConfirmConsent(c.Request.Context(), req.ConversationID, utils.GetUserIDFromContext(c)); err != nil {
		utils.SendServiceError(c, err)
		return
	}

	utils.SendOKResponse(c, models.NewSuccessResponse("Consent confirmed", nil))
}
