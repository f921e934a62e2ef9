package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/middleware"
)

// RouteDeps bundles everything SetupRoutes needs. Collecting the services
// in one struct keeps main.go readable and makes handler tests explicit
// about which dependencies they fake.
type RouteDeps struct {
	Logger           *zap.Logger
	TokenVerifier    middleware.TokenVerifier
	ResolverService  core.ResolverService
	UserService      core.UserService
	PartnerService   core.PartnerService
	BillingService   core.BillingService
	Mailer           core.Mailer
	ContactRecipient string
	SystemConfigRepo db.SystemConfigRepository
	FirestoreProbe   DependencyProbe
	Environment      string
	SMTPConfigured   bool
	StripeConfigured bool
}

// SetupRoutes registers all application routes. Global middleware
// (request ID, logging, recovery, CORS) is expected on the router already;
// this function only attaches the per-route auth guard.
func SetupRoutes(router *gin.Engine, deps RouteDeps) {
	authMW := middleware.NewAuthMiddleware(deps.TokenVerifier, deps.Logger)

	resolverHandler := NewResolverHandler(deps.ResolverService, deps.Logger)
	userHandler := NewUserHandler(deps.UserService, deps.Logger)
	businessHandler := NewBusinessHandler(deps.PartnerService, deps.Logger)
	billingHandler := NewBillingHandler(deps.BillingService, deps.Logger)
	contactHandler := NewContactHandler(deps.Mailer, deps.ContactRecipient, deps.Logger)
	miscHandler := NewMiscHandler(
		deps.SystemConfigRepo,
		deps.FirestoreProbe,
		deps.Environment,
		deps.SMTPConfigured,
		deps.StripeConfigured,
		deps.Logger,
	)

	apiGroup := router.Group("/api")
	{
		// Public endpoints.
		apiGroup.GET("/health", miscHandler.HealthCheck)
		apiGroup.GET("/legal/:slug", miscHandler.GetLegalDocument)
		apiGroup.GET("/system-config", miscHandler.GetSystemConfig)
		apiGroup.POST("/contact", contactHandler.SubmitContactForm)

		// Stripe calls this endpoint directly; trust comes from the
		// signature header, not from a user token.
		apiGroup.POST("/stripe/webhook", billingHandler.HandleWebhook)

		// Account resolution, called right after client-side sign-in.
		apiGroup.GET("/account/resolve", authMW.VerifyToken(), resolverHandler.ResolveAccount)

		usersGroup := apiGroup.Group("/users", authMW.VerifyToken())
		{
			usersGroup.POST("/initialize", userHandler.InitializeUserProfile)
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}

		// Singular path kept for client compatibility.
		userGroup := apiGroup.Group("/user", authMW.VerifyToken())
		{
			userGroup.POST("/change-password", userHandler.ChangePassword)
			userGroup.POST("/update-email", userHandler.UpdateEmail)
			userGroup.DELETE("/delete-account", userHandler.DeleteAccount)
		}

		businessGroup := apiGroup.Group("/business", authMW.VerifyToken())
		{
			businessGroup.POST("/register", businessHandler.RegisterBusiness)
			businessGroup.GET("/me", businessHandler.GetOwnBusiness)
			businessGroup.PUT("/update", businessHandler.UpdateBusiness)
			businessGroup.DELETE("/delete", businessHandler.DeleteBusiness)
		}

		stripeGroup := apiGroup.Group("/stripe", authMW.VerifyToken())
		{
			stripeGroup.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
			stripeGroup.POST("/create-portal-session", billingHandler.CreatePortalSession)
		}
	}
}
