package core

import (
	"context"
	"time"

	"pedro-backend-go/internal/models"
)

// Identity is the verified Firebase identity extracted from the request
// token. It is passed explicitly through the call chain instead of living
// in ambient state.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
}

// Outcome of resolving an account against the partners collection.
type Outcome string

const (
	OutcomeNoBusiness  Outcome = "no_business"
	OutcomeHasBusiness Outcome = "has_business"
)

// Resolution is the result of an account-resolver pass.
type Resolution struct {
	Outcome     Outcome
	PartnerID   string // set for OutcomeHasBusiness
	UserCreated bool   // true when the user document was created on this pass
	Degraded    bool   // true when the business lookup failed and the safe default applied
}

// ResolverService decides which screen a signed-in user should land on.
type ResolverService interface {
	// Resolve ensures a user document exists for the identity, then checks
	// for an owned business. A user-document creation failure is fatal for
	// the request; a business-lookup failure degrades to OutcomeNoBusiness
	// after a fixed delay.
	Resolve(ctx context.Context, identity Identity) (*Resolution, error)
}

// UserService defines the interface for user-account operations.
type UserService interface {
	// GetOrCreate retrieves a user by UID, creating a customer-typed
	// document from the identity data when missing. The bool reports
	// whether a document was created.
	GetOrCreate(ctx context.Context, identity Identity) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// DeleteAccount deletes any owned business (with best-effort Stripe
	// cleanup), then the user document and the Firebase Auth identity.
	// The steps are not atomic; partial failure is logged, not retried.
	DeleteAccount(ctx context.Context, userID, confirmation string) (*AccountDeletionSummary, error)
	// ChangePassword sets a new Firebase Auth password and revokes the
	// caller's refresh tokens so other sessions are logged out. Current-
	// password verification happens client-side via reauthentication.
	ChangePassword(ctx context.Context, userID, newPassword string) (*PasswordChangeSummary, error)
	// UpdateEmail moves the identity to a new address, resets the
	// verification flag and issues a fresh verification link. Fails when
	// the address already belongs to another account.
	UpdateEmail(ctx context.Context, userID, newEmail string) (*EmailChangeSummary, error)
}

// AccountDeletionSummary reports what the composed deletion touched.
type AccountDeletionSummary struct {
	AccountDeleted bool `json:"accountDeleted"`
	PartnerDeleted bool `json:"partnerDeleted"`
	StripeCleanup  bool `json:"stripeCleanup"`
}

// PasswordChangeSummary reports the outcome of a password change.
type PasswordChangeSummary struct {
	PasswordChanged bool `json:"passwordChanged"`
	TokensRevoked   bool `json:"tokensRevoked"`
}

// EmailChangeSummary reports the outcome of an email change.
type EmailChangeSummary struct {
	NewEmail             string `json:"newEmail"`
	VerificationRequired bool   `json:"verificationRequired"`
}

// PartnerService defines CRUD for business profiles with ownership
// enforcement and payment-provider cleanup on deletion.
type PartnerService interface {
	Register(ctx context.Context, ownerID string, form models.BusinessForm) (*models.Partner, error)
	GetOwn(ctx context.Context, ownerID string) (*models.Partner, error)
	Update(ctx context.Context, callerID string, req models.UpdateBusinessRequest) (*models.Partner, error)
	Delete(ctx context.Context, callerID string, req models.DeleteBusinessRequest) (*DeletionSummary, error)
	// DeleteForOwner removes the caller's business without a confirmation
	// check. It backs the composed account-deletion flow; a missing
	// business is not an error.
	DeleteForOwner(ctx context.Context, ownerID string) (*DeletionSummary, error)
}

// DeletionSummary reports the outcome of a business deletion.
type DeletionSummary struct {
	BusinessDeleted      bool `json:"businessDeleted"`
	StripeCleanup        bool `json:"stripeCleanup"`
	UserAccountPreserved bool `json:"userAccountPreserved"`
}

// BillingService owns all Stripe interactions: user-initiated sessions and
// the webhook synchronizer.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, callerID, partnerID string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, callerID, partnerID string) (string, error)
	// HandleWebhook verifies the payload signature and applies the event to
	// the matching partner document. Unknown event kinds and unknown
	// customers are logged and acknowledged; only a bad signature is an error.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// CheckoutSession is a created Stripe Checkout session.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// WebhookEvent is a payment-provider event reduced to the fields the
// synchronizer needs. Kind keeps the provider's raw event type so unknown
// kinds can be logged verbatim.
type WebhookEvent struct {
	ID                 string
	Kind               string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	PeriodStart        *time.Time
	PeriodEnd          *time.Time
	InvoiceID          string
	Amount             int64
	Currency           string
}

// Webhook event kinds handled by the synchronizer.
const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// PaymentGateway abstracts the Stripe API surface used by the services, so
// they can be tested without network calls.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	ListActiveSubscriptions(ctx context.Context, customerID string) ([]string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateCheckoutSession(ctx context.Context, customerID string, metadata map[string]string) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	// ConstructEvent verifies the webhook signature and maps the provider
	// payload to a WebhookEvent.
	ConstructEvent(payload []byte, sigHeader string) (*WebhookEvent, error)
}

// IdentityAdmin is the slice of the Firebase Auth admin surface the account
// services need, expressed in domain terms so the SDK types stay out of
// this package. db.FirebaseIdentityAdmin implements it; lookup misses come
// back as db.ErrNotFound.
type IdentityAdmin interface {
	DeleteUser(ctx context.Context, uid string) error
	GetEmail(ctx context.Context, uid string) (string, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	SetPassword(ctx context.Context, uid, newPassword string) error
	// SetEmail also resets the identity's email-verified flag.
	SetEmail(ctx context.Context, uid, newEmail string) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	EmailVerificationLink(ctx context.Context, email string) (string, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// Mailer sends outbound mail. The contact form is its only consumer.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
