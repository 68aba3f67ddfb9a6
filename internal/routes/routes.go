package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/config"
	"github.com/BruksfildServices01/micro8gents-api/internal/handlers"
	"github.com/BruksfildServices01/micro8gents-api/internal/metrics"
	"github.com/BruksfildServices01/micro8gents-api/internal/middleware"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/objectstore"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/telephony"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/voice"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/session"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	ucAccount "github.com/BruksfildServices01/micro8gents-api/internal/usecase/account"
	ucAdmin "github.com/BruksfildServices01/micro8gents-api/internal/usecase/admin"
	ucBooking "github.com/BruksfildServices01/micro8gents-api/internal/usecase/booking"
	ucBusiness "github.com/BruksfildServices01/micro8gents-api/internal/usecase/business"
	ucCall "github.com/BruksfildServices01/micro8gents-api/internal/usecase/call"
	ucIntegration "github.com/BruksfildServices01/micro8gents-api/internal/usecase/integration"
	ucSubscription "github.com/BruksfildServices01/micro8gents-api/internal/usecase/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/validators"
)

const limiterCleanupInterval = 10 * time.Minute

// Deps is everything built in main that the HTTP layer needs.
type Deps struct {
	Config      *config.Config
	Store       storage.Storage
	Log         *zap.Logger
	Sessions    *session.Manager
	Revocations session.Revocations

	Billing   *billing.Service
	Mailer    ucAccount.ResetMailer
	Telephony *telephony.Service
	Voice     *voice.Service
	Workflows workflow.Triggerer
	Objects   *objectstore.Store
	Audit     audit.Recorder

	// Resolver enables the email domain check on register; nil skips it.
	Resolver validators.Resolver
	// Done stops background housekeeping such as the rate limiter sweep.
	Done <-chan struct{}
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	store := d.Store
	log := d.Log

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.RecoveryMiddleware(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.CORSMiddleware(cfg.AllowedOrigins()),
	)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerSecond, cfg.AuthRateBurst, log)
	if d.Done != nil {
		authLimiter.StartCleanup(limiterCleanupInterval, d.Done)
	}

	requireSession := middleware.AuthMiddleware(d.Sessions, d.Revocations, store, log)

	// ======================================================
	// USE CASES: ACCOUNT
	// ======================================================
	registerUC := ucAccount.NewRegister(store, d.Resolver)
	loginUC := ucAccount.NewLogin(store)
	forgotUC := ucAccount.NewForgotPassword(store, d.Mailer, cfg.ClientURL)
	resetUC := ucAccount.NewResetPassword(store)
	profileUC := ucAccount.NewUpdateProfile(store)

	// ======================================================
	// USE CASES: BUSINESS
	// ======================================================
	saveInfoUC := ucBusiness.NewSaveInfo(store, d.Audit)
	setupUC := ucBusiness.NewSetup(saveInfoUC)
	replaceHoursUC := ucBusiness.NewReplaceHours(store, d.Audit)
	replaceFAQsUC := ucBusiness.NewReplaceFAQs(store, d.Audit)
	setupStatusUC := ucBusiness.NewGetSetupStatus(store, store)

	// ======================================================
	// USE CASES: CALLS
	// ======================================================
	inboundUC := ucCall.NewHandleInbound(store, d.Workflows, log)
	speechUC := ucCall.NewForwardSpeech(store, d.Workflows)
	workflowEventUC := ucCall.NewApplyWorkflowEvent(store)
	recordingUC := ucCall.NewRecordingLink(store, d.Objects, cfg.RecordingURLTTL)
	statsUC := ucCall.NewGetDashboardStats(store, cfg.DefaultTimezone)
	reportUC := ucCall.NewRequestReport(statsUC, d.Workflows)

	// ======================================================
	// USE CASES: BOOKINGS / INTEGRATIONS
	// ======================================================
	createBookingUC := ucBooking.NewCreate(store, d.Workflows, d.Audit, log)
	updateBookingUC := ucBooking.NewUpdate(store, d.Audit)
	deleteBookingUC := ucBooking.NewDelete(store, d.Audit)

	createIntegrationUC := ucIntegration.NewCreate(store, d.Audit)
	updateIntegrationUC := ucIntegration.NewUpdate(store, d.Audit)
	deleteIntegrationUC := ucIntegration.NewDelete(store, d.Audit)

	// ======================================================
	// USE CASES: SUBSCRIPTIONS
	// ======================================================
	createFreeUC := ucSubscription.NewCreateFree(store)
	checkoutUC := ucSubscription.NewCheckout(store, d.Billing, cfg.PriceID, cfg.ClientURL)
	portalUC := ucSubscription.NewBillingPortal(store, d.Billing, cfg.ClientURL)
	cancelUC := ucSubscription.NewCancel(store, d.Billing, d.Audit)
	applyWebhookUC := ucSubscription.NewApplyWebhook(store)

	// ======================================================
	// USE CASES: ADMIN
	// ======================================================
	listUsersUC := ucAdmin.NewListUsers(store)
	userDetailUC := ucAdmin.NewGetUserDetail(store)
	updateRoleUC := ucAdmin.NewUpdateRole(store, d.Audit)
	adminStatsUC := ucAdmin.NewGetStats(store)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(
		registerUC,
		loginUC,
		forgotUC,
		resetUC,
		d.Sessions,
		d.Revocations,
		cfg.CookieSecure,
		log,
	)

	businessHandler := handlers.NewBusinessHandler(
		store,
		saveInfoUC,
		setupUC,
		replaceHoursUC,
		replaceFAQsUC,
		setupStatusUC,
		log,
	)

	callHandler := handlers.NewCallHandler(store, recordingUC, statsUC, reportUC, log)
	bookingHandler := handlers.NewBookingHandler(store, createBookingUC, updateBookingUC, deleteBookingUC, log)
	integrationHandler := handlers.NewIntegrationHandler(store, createIntegrationUC, updateIntegrationUC, deleteIntegrationUC, log)

	subscriptionHandler := handlers.NewSubscriptionHandler(
		store,
		createFreeUC,
		checkoutUC,
		portalUC,
		cancelUC,
		log,
	)

	webhookHandler := handlers.NewWebhookHandler(
		d.Telephony,
		inboundUC,
		speechUC,
		cfg.N8nWebhookSecret,
		workflowEventUC,
		d.Billing,
		applyWebhookUC,
		log,
	)

	profileHandler := handlers.NewProfileHandler(profileUC, log)
	voiceHandler := handlers.NewVoiceHandler(d.Voice, d.Objects, cfg.RecordingURLTTL, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(store, cfg.DefaultTimezone, log)
	adminHandler := handlers.NewAdminHandler(listUsersUC, userDetailUC, updateRoleUC, adminStatsUC, log)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		auth := api.Group("/auth")
		auth.Use(authLimiter.Handler())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)

			auth.POST("/logout", requireSession, authHandler.Logout)
			auth.GET("/me", requireSession, authHandler.Me)
		}

		// ------------------------------
		// WEBHOOKS (no session)
		// ------------------------------
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/twilio", webhookHandler.Twilio)
			webhooks.POST("/twilio/gather", webhookHandler.TwilioGather)
			webhooks.POST("/n8n", webhookHandler.N8n)
			webhooks.POST("/stripe", webhookHandler.Stripe)
		}

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(requireSession)
		{
			secured.GET("/business/info", businessHandler.GetInfo)
			secured.PUT("/business/info", businessHandler.SaveInfo)
			secured.GET("/business/hours", businessHandler.GetHours)
			secured.PUT("/business/hours", businessHandler.ReplaceHours)
			secured.PUT("/business/hours/setup", businessHandler.SetupHours)
			secured.GET("/business/faqs", businessHandler.ListFAQs)
			secured.PUT("/business/faqs", businessHandler.ReplaceFAQs)
			secured.POST("/business/setup", businessHandler.Setup)
			secured.GET("/business/setup/status", businessHandler.SetupStatus)

			secured.GET("/calls", callHandler.List)
			secured.POST("/calls", callHandler.Create)
			secured.GET("/calls/:id", callHandler.Get)
			secured.GET("/calls/:id/recording", callHandler.Recording)

			secured.GET("/dashboard/stats", callHandler.Stats)
			secured.POST("/dashboard/report", callHandler.Report)

			secured.GET("/bookings", bookingHandler.List)
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PUT("/bookings/:id", bookingHandler.Update)
			secured.DELETE("/bookings/:id", bookingHandler.Delete)

			secured.GET("/integrations", integrationHandler.List)
			secured.POST("/integrations", integrationHandler.Create)
			secured.GET("/integrations/:id", integrationHandler.Get)
			secured.PUT("/integrations/:id", integrationHandler.Update)
			secured.DELETE("/integrations/:id", integrationHandler.Delete)

			secured.GET("/subscriptions/current", subscriptionHandler.Current)
			secured.POST("/subscriptions", subscriptionHandler.CreateFree)
			secured.POST("/subscriptions/checkout", subscriptionHandler.Checkout)
			secured.POST("/subscriptions/billing-portal", subscriptionHandler.BillingPortal)
			secured.POST("/subscriptions/cancel", subscriptionHandler.Cancel)

			secured.GET("/profile", profileHandler.Get)
			secured.PUT("/profile", profileHandler.Update)

			secured.GET("/voice/voices", voiceHandler.List)
			secured.GET("/voice/voices/:id", voiceHandler.Get)
			secured.POST("/voice/preview", voiceHandler.Preview)

			secured.GET("/audit-logs", auditLogsHandler.List)

			// ------------------------------
			// ADMIN
			// ------------------------------
			adminGroup := secured.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminGroup.GET("/users", adminHandler.ListUsers)
				adminGroup.GET("/users/:id", adminHandler.GetUser)
				adminGroup.PUT("/users/:id/role", adminHandler.UpdateRole)
				adminGroup.GET("/dashboard/stats", adminHandler.Stats)
			}
		}
	}
}
