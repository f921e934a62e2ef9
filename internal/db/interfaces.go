package db

import (
	"context"

	"pedro-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// PartnerRepository defines the interface for partner (business) storage
// operations. Updates are last-write-wins field assignments; there is no
// optimistic-concurrency token on the document.
type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error // partner.ID must be pre-assigned
	GetByID(ctx context.Context, partnerID string) (*models.Partner, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Partner, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Partner, error)
	Update(ctx context.Context, partner *models.Partner) error
	// SetStripeCustomerID records a lazily created Stripe customer on the
	// partner document without touching other fields.
	SetStripeCustomerID(ctx context.Context, partnerID, customerID string) error
	// SetBillingState overwrites billing and businessModel on the partner
	// document, driven exclusively by the billing synchronizer.
	SetBillingState(ctx context.Context, partnerID string, billing models.BillingState, businessModel models.BusinessModelState) error
	Delete(ctx context.Context, partnerID string) error
}

// PaymentRepository appends invoice outcomes to the per-partner payments
// subcollection.
type PaymentRepository interface {
	Create(ctx context.Context, partnerID string, record *models.PaymentRecord) (string, error)
}

// AuditRepository defines the interface for audit log storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}

// SystemConfigRepository reads the reference-data document. It is never
// written by this service.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
}
