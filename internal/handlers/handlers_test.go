package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carecompanion/carecompanion-api/internal/classifier"
	"github.com/carecompanion/carecompanion-api/internal/handlers/mocks"
	"github.com/carecompanion/carecompanion-api/internal/middleware"
	"github.com/carecompanion/carecompanion-api/internal/models"
	"github.com/carecompanion/carecompanion-api/internal/system/error/serviceerror"
	"github.com/carecompanion/carecompanion-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(t *testing.T, r http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newEscalationRouter(svc SignalService) *gin.Engine {
	h := NewEscalationHandler(svc)
	r := gin.New()
	user := r.Group("/", middleware.UserIdentity())
	user.POST("/conversations/:conversationId/risk-signals", h.SubmitRiskSignal)
	user.POST("/conversations/:conversationId/classifications", h.SubmitClassification)
	user.POST("/escalations/consent", h.ConfirmConsent)
	return r
}

func TestSubmitRiskSignal(t *testing.T) {
	svc := &mocks.MockSignalService{}
	r := newEscalationRouter(svc)

	esc := &models.EscalationRequest{ID: "ESC-1", Status: models.EscalationStatusPending}
	svc.On("EvaluateSignal", mock.Anything, "user-1", "conv-1", "help",
		classifier.Classification{Mood: "risk", RiskScore: 0.9}).Return(esc, nil).Once()
	svc.On("EvaluateSignal", mock.Anything, "user-1", "conv-2", "fine",
		classifier.Classification{Mood: "neutral", RiskScore: 0}).Return(nil, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/conversations/conv-1/risk-signals", "user-1",
		map[string]interface{}{"messageContent": "help", "mood": "risk", "riskScore": 0.9})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.RiskSignalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.EscalationTriggered)
	assert.Equal(t, "ESC-1", resp.Escalation.ID)

	w = doRequest(t, r, http.MethodPost, "/conversations/conv-2/risk-signals", "user-1",
		map[string]interface{}{"messageContent": "fine", "mood": "neutral", "riskScore": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"escalationTriggered":false}`, w.Body.String())

	svc.AssertExpectations(t)
}

func TestSubmitRiskSignal_BadRequests(t *testing.T) {
	svc := &mocks.MockSignalService{}
	r := newEscalationRouter(svc)

	tests := []struct {
		name       string
		userID     string
		body       interface{}
		wantStatus int
	}{
		{name: "missing identity", body: map[string]interface{}{"messageContent": "x", "mood": "risk", "riskScore": 0.9}, wantStatus: http.StatusUnauthorized},
		{name: "malformed json", userID: "user-1", body: "{", wantStatus: http.StatusBadRequest},
		{name: "missing score", userID: "user-1", body: map[string]interface{}{"messageContent": "x", "mood": "risk"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/conversations/conv-1/risk-signals", tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	svc.AssertNotCalled(t, "EvaluateSignal")
}

func TestSubmitRiskSignal_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid score", err: serviceerror.CustomServiceError(serviceerror.ValidationError, "risk score must be between 0 and 1"), wantStatus: http.StatusBadRequest},
		{name: "unknown user", err: serviceerror.CustomServiceError(serviceerror.NotFoundError, "user not found"), wantStatus: http.StatusNotFound},
		{name: "database", err: serviceerror.WrapServiceError(serviceerror.DatabaseError, errors.New("down")), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockSignalService{}
			svc.On("EvaluateSignal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(t, newEscalationRouter(svc), http.MethodPost, "/conversations/conv-1/risk-signals", "user-1",
				map[string]interface{}{"messageContent": "x", "mood": "risk", "riskScore": 1.5})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSubmitClassification(t *testing.T) {
	svc := &mocks.MockSignalService{}
	r := newEscalationRouter(svc)

	want := classifier.Classification{Mood: "risk", RiskScore: 0.85, Response: "I'm really glad you told me."}
	svc.On("EvaluateSignal", mock.Anything, "user-1", "conv-1", "I can't go on", want).
		Return(&models.EscalationRequest{ID: "ESC-9"}, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/conversations/conv-1/classifications", "user-1", map[string]interface{}{
		"messageContent": "I can't go on",
		"modelOutput":    "MOOD: risk\nRISK_SCORE: 0.85\nRESPONSE: I'm really glad you told me.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ClassificationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "risk", resp.Mood)
	assert.Equal(t, 0.85, resp.RiskScore)
	assert.Equal(t, "I'm really glad you told me.", resp.Response)
	assert.True(t, resp.EscalationTriggered)
	assert.Equal(t, "ESC-9", resp.Escalation.ID)
	svc.AssertExpectations(t)
}

func TestConfirmConsent(t *testing.T) {
	svc := &mocks.MockSignalService{}
	r := newEscalationRouter(svc)

	svc.On("ConfirmConsent", mock.Anything, "conv-1", "user-1").Return(nil).Twice()
	svc.On("ConfirmConsent", mock.Anything, "conv-404", "user-1").
		Return(serviceerror.CustomServiceError(serviceerror.NotFoundError, "no pending escalation found for this conversation")).Once()

	w := doRequest(t, r, http.MethodPost, "/escalations/consent", "user-1", map[string]string{"conversationId": "conv-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/escalations/consent?conversation_id=conv-1", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPost, "/escalations/consent", "user-1", map[string]string{"conversationId": "conv-404"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no pending escalation found")

	w = doRequest(t, r, http.MethodPost, "/escalations/consent", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func newModeratorRouter(svc ReviewService) *gin.Engine {
	h := NewModeratorHandler(svc)
	r := gin.New()
	mod := r.Group("/moderator", gin.BasicAuth(gin.Accounts{"alice": "secret"}))
	mod.GET("/queue", h.ListQueue)
	mod.GET("/escalations/:escalationId", h.GetEscalation)
	mod.GET("/escalations/:escalationId/notifications", h.ListNotifications)
	mod.POST("/escalations/:escalationId/approve", h.Approve)
	mod.POST("/escalations/:escalationId/reject", h.Reject)
	return r
}

func moderatorRequest(t *testing.T, r http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.SetBasicAuth("alice", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestModerator_ListQueue(t *testing.T) {
	svc := &mocks.MockReviewService{}
	r := newModeratorRouter(svc)

	name := "Alex"
	pending := []models.PendingEscalation{
		{EscalationRequest: models.EscalationRequest{ID: "ESC-2"}, UserName: &name},
		{EscalationRequest: models.EscalationRequest{ID: "ESC-1"}},
	}
	svc.On("ListPending", mock.Anything, 2, 0).
		Return(&models.PendingPage{Items: pending, Total: 5, Limit: 2}, nil).Once()

	w := moderatorRequest(t, r, http.MethodGet, "/moderator/queue?limit=2")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data     []models.PendingEscalation `json:"data"`
		Metadata struct {
			Total   int  `json:"total"`
			HasMore bool `json:"hasMore"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "ESC-2", resp.Data[0].ID)
	assert.Equal(t, "Alex", *resp.Data[0].UserName)
	assert.Equal(t, 5, resp.Metadata.Total)
	assert.True(t, resp.Metadata.HasMore)
	svc.AssertExpectations(t)
}

func TestModerator_ListQueueReportsClampedLimit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		reqLimit int
		page     *models.PendingPage
		want     utils.PaginationMetadata
	}{
		{
			name:     "request above queue limit",
			query:    "?limit=50",
			reqLimit: 50,
			page:     &models.PendingPage{Total: 25, Limit: 10},
			want:     utils.PaginationMetadata{Total: 25, Limit: 10, HasMore: true, TotalPages: 3},
		},
		{
			name:     "default limit above queue limit",
			reqLimit: 20,
			page:     &models.PendingPage{Total: 10, Limit: 10},
			want:     utils.PaginationMetadata{Total: 10, Limit: 10, HasMore: false, TotalPages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockReviewService{}
			r := newModeratorRouter(svc)
			svc.On("ListPending", mock.Anything, tt.reqLimit, 0).Return(tt.page, nil).Once()

			w := moderatorRequest(t, r, http.MethodGet, "/moderator/queue"+tt.query)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp struct {
				Data     []models.PendingEscalation `json:"data"`
				Metadata utils.PaginationMetadata   `json:"metadata"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotNil(t, resp.Data)
			assert.Equal(t, tt.want, resp.Metadata)
			svc.AssertExpectations(t)
		})
	}
}

func TestModerator_RequiresCredentials(t *testing.T) {
	svc := &mocks.MockReviewService{}
	r := newModeratorRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/moderator/escalations/ESC-1/approve", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Approve")
}

func TestModerator_Approve(t *testing.T) {
	svc := &mocks.MockReviewService{}
	r := newModeratorRouter(svc)

	payload := &models.NotificationPayload{
		NotificationID: "NOTIF-1",
		EscalationID:   "ESC-1",
		Body:           "Hi Sam ... 988 ... 741741",
		Status:         models.NotificationStatusMockSent,
	}
	svc.On("Approve", mock.Anything, "ESC-1", "alice").Return(payload, nil).Once()
	svc.On("Approve", mock.Anything, "ESC-2", "alice").
		Return(nil, serviceerror.CustomServiceError(serviceerror.ConflictError, "escalation is not pending")).Once()
	svc.On("Approve", mock.Anything, "ESC-3", "alice").
		Return(nil, serviceerror.WrapServiceError(serviceerror.NotificationError, errors.New("gateway 503"))).Once()

	w := moderatorRequest(t, r, http.MethodPost, "/moderator/escalations/ESC-1/approve")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.ApprovalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOTIF-1", resp.Notification.NotificationID)
	assert.Contains(t, resp.Notification.Body, "988")

	w = moderatorRequest(t, r, http.MethodPost, "/moderator/escalations/ESC-2/approve")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrCodeNotPending)

	w = moderatorRequest(t, r, http.MethodPost, "/moderator/escalations/ESC-3/approve")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "gateway 503")

	svc.AssertExpectations(t)
}

func TestModerator_RejectAndRead(t *testing.T) {
	svc := &mocks.MockReviewService{}
	r := newModeratorRouter(svc)

	svc.On("Reject", mock.Anything, "ESC-1", "alice").Return(nil).Once()
	svc.On("Reject", mock.Anything, "ESC-404", "alice").
		Return(serviceerror.CustomServiceError(serviceerror.NotFoundError, "escalation not found")).Once()
	svc.On("GetEscalation", mock.Anything, "ESC-1").
		Return(&models.EscalationRequest{ID: "ESC-1", Status: models.EscalationStatusRejected}, nil).Once()
	svc.On("ListNotifications", mock.Anything, "ESC-1").Return([]models.NotificationLog{}, nil).Once()

	assert.Equal(t, http.StatusOK, moderatorRequest(t, r, http.MethodPost, "/moderator/escalations/ESC-1/reject").Code)
	assert.Equal(t, http.StatusNotFound, moderatorRequest(t, r, http.MethodPost, "/moderator/escalations/ESC-404/reject").Code)

	w := moderatorRequest(t, r, http.MethodGet, "/moderator/escalations/ESC-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"rejected"`)

	w = moderatorRequest(t, r, http.MethodGet, "/moderator/escalations/ESC-1/notifications")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	svc.AssertExpectations(t)
}

func newProfileRouter(profiles ProfileService, audit AuditHistory) *gin.Engine {
	h := NewProfileHandler(profiles, audit)
	r := gin.New()
	user := r.Group("/", middleware.UserIdentity())
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile/emergency-contact", h.UpdateEmergencyContact)
	user.GET("/profile/audit-log", h.GetAuditLog)
	return r
}

func TestProfileHandler(t *testing.T) {
	profiles := &mocks.MockProfileService{}
	audit := &mocks.MockAuditHistory{}
	r := newProfileRouter(profiles, audit)

	user := &models.User{ID: "user-1", Name: "Alex", ConsentGiven: true}
	profiles.On("GetProfile", mock.Anything, "user-1").Return(user, nil).Once()
	profiles.On("UpdateEmergencyContact", mock.Anything, "user-1", mock.MatchedBy(func(req *models.EmergencyContactUpdateRequest) bool {
		return req.ConsentGiven != nil && *req.ConsentGiven && *req.EmergencyContactPhone == "+15550100"
	})).Return(user, nil).Once()
	audit.On("History", mock.Anything, "user-1").
		Return([]models.AuditLog{{ID: "AUDIT-1", Action: models.AuditActionEmergencyContactUpdated}}, nil).Once()

	w := doRequest(t, r, http.MethodGet, "/profile", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alex"`)

	w = doRequest(t, r, http.MethodPut, "/profile/emergency-contact", "user-1",
		map[string]interface{}{"consentGiven": true, "emergencyContactName": "Sam", "emergencyContactPhone": "+15550100"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodPut, "/profile/emergency-contact", "user-1",
		map[string]interface{}{"emergencyContactName": "Sam"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, "/profile/audit-log", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "emergency_contact_updated")

	profiles.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestHealthHandler(t *testing.T) {
	db := &mocks.MockHealthChecker{}
	db.On("HealthCheck", mock.Anything).Return(nil).Once()
	db.On("HealthCheck", mock.Anything).Return(errors.New("refused")).Once()

	r := gin.New()
	r.GET("/health", NewHealthHandler(db, "1.2.3").Health)

	w := doRequest(t, r, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, models.Disclaimer, resp.Disclaimer)

	w = doRequest(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unreachable")

	db.AssertExpectations(t)
}
