package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pedro-backend-go/internal/api"
	"pedro-backend-go/internal/config"
	"pedro-backend-go/internal/core"
	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/mailer"
	"pedro-backend-go/internal/middleware"
	"pedro-backend-go/internal/payments"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// --- 1. Logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if strings.ToLower(appConfig.GinMode) == "release" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded", zap.String("environment", appConfig.Environment))

	// --- 2. Firebase Admin SDK (Firestore + Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase clients are nil after initialization")
	}
	zapLogger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))

	// --- 3. Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	partnerRepo := db.NewFirestorePartnerRepository(firestoreClient)
	paymentRepo := db.NewFirestorePaymentRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)
	systemConfigRepo := db.NewFirestoreSystemConfigRepository(firestoreClient)

	// --- 4. Payment gateway and core services ---
	stripeGateway := payments.NewStripeGateway(
		appConfig.StripeSecretKey,
		appConfig.StripeWebhookSecret,
		appConfig.ClientURL,
	)

	identityAdmin := db.NewFirebaseIdentityAdmin(firebaseAuthClient, appConfig.ClientURL)
	auditService := core.NewAuditService(auditRepo)
	partnerService := core.NewPartnerService(partnerRepo, userRepo, stripeGateway, auditService, zapLogger)
	userService := core.NewUserService(userRepo, partnerService, identityAdmin, auditService, zapLogger)
	resolverService := core.NewResolverService(userService, partnerRepo, zapLogger)
	billingService := core.NewBillingService(partnerRepo, paymentRepo, stripeGateway, auditService, zapLogger)
	smtpMailer := mailer.NewSMTPMailer(appConfig)
	zapLogger.Info("Core services initialized")

	// --- 5. Gin engine and global middleware ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := api.RegisterValidators(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to register request validators", zap.Error(err))
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 6. Routes ---
	tokenVerifier := middleware.NewFirebaseVerifier(func(ctx context.Context, idToken string) (*middleware.VerifiedToken, error) {
		token, err := firebaseAuthClient.VerifyIDToken(ctx, idToken)
		if err != nil {
			return nil, err
		}
		return &middleware.VerifiedToken{UID: token.UID, Claims: token.Claims}, nil
	})

	// The health probe reads a throwaway document; NotFound still proves
	// the datastore answers.
	firestoreProbe := func(ctx context.Context) error {
		_, err := firestoreClient.Collection("_health").Doc("test").Get(ctx)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		return nil
	}

	api.SetupRoutes(router, api.RouteDeps{
		Logger:           zapLogger,
		TokenVerifier:    tokenVerifier,
		ResolverService:  resolverService,
		UserService:      userService,
		PartnerService:   partnerService,
		BillingService:   billingService,
		Mailer:           smtpMailer,
		ContactRecipient: appConfig.SMTPTo,
		SystemConfigRepo: systemConfigRepo,
		FirestoreProbe:   firestoreProbe,
		Environment:      appConfig.Environment,
		SMTPConfigured:   appConfig.SMTPConfigured(),
		StripeConfigured: appConfig.StripeSecretKey != "",
	})

	// --- 7. HTTP server with graceful shutdown ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully")
}
