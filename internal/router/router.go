package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/carecompanion/carecompanion-api/internal/config"
	"github.com/carecompanion/carecompanion-api/internal/handlers"
	"github.com/carecompanion/carecompanion-api/internal/metrics"
	"github.com/carecompanion/carecompanion-api/internal/middleware"
)

// Dependencies are the collaborators the routes are served by
type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Signals  handlers.SignalService
	Review   handlers.ReviewService
	Profiles handlers.ProfileService
	Audit    handlers.AuditHistory
	Health   handlers.HealthChecker
	Version  string
}

// SetupRouter configures all API routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationID(),
		middleware.CORS(deps.Config.CORS),
		middleware.AccessLog(deps.Logger, deps.Metrics),
	)

	healthHandler := handlers.NewHealthHandler(deps.Health, deps.Version)
	escalationHandler := handlers.NewEscalationHandler(deps.Signals)
	moderatorHandler := handlers.NewModeratorHandler(deps.Review)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Audit)

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "route not found"})
	})

	v1 := router.Group("/api/v1")

	// User routes: identity is asserted by the upstream gateway
	user := v1.Group("", middleware.UserIdentity())
	{
		user.POST("/conversations/:conversationId/risk-signals", escalationHandler.SubmitRiskSignal)
		user.POST("/conversations/:conversationId/classifications", escalationHandler.SubmitClassification)
		user.POST("/escalations/consent", escalationHandler.ConfirmConsent)

		user.GET("/profile", profileHandler.GetProfile)
		user.PUT("/profile/emergency-contact", profileHandler.UpdateEmergencyContact)
		user.GET("/profile/audit-log", profileHandler.GetAuditLog)
	}

	moderator := v1.Group("/moderator")
	if deps.Config.Security.IsBasicAuthEnabled() {
		moderator.Use(gin.BasicAuth(deps.Config.Security.Accounts()))
	}
	{
		moderator.GET("/queue", moderatorHandler.ListQueue)
		moderator.GET("/escalations/:escalationId", moderatorHandler.GetEscalation)
		moderator.GET("/escalations/:escalationId/notifications", moderatorHandler.ListNotifications)
		moderator.POST("/escalations/:escalationId/approve", moderatorHandler.Approve)
		moderator.POST("/escalations/:escalationId/reject", moderatorHandler.Reject)
	}

	return router
}
