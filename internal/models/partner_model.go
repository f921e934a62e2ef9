package models

import "time"

// Business model phases. "beta_free" is the launch phase; pay-per-use
// becomes active once a Stripe subscription is live.
const (
	PhaseBetaFree  = "beta_free"
	PhasePayPerUse = "ppu"
)

// Subscription statuses mirrored from Stripe.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

// Address is a business postal address.
type Address struct {
	Line1      string `json:"line1" firestore:"line1"`
	Line2      string `json:"line2,omitempty" firestore:"line2,omitempty"`
	City       string `json:"city" firestore:"city"`
	PostalCode string `json:"postalCode" firestore:"postalCode"`
	Country    string `json:"country" firestore:"country"`
}

// BillingState carries the Stripe side of a partner record. All fields are
// optional: a freshly registered business has no Stripe customer yet.
type BillingState struct {
	StripeCustomerID   string     `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	SubscriptionID     string     `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
	SubscriptionStatus string     `json:"subscriptionStatus,omitempty" firestore:"subscriptionStatus,omitempty"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart,omitempty" firestore:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty" firestore:"currentPeriodEnd,omitempty"`
}

// BusinessModelState tracks which commercial phase the partner is in.
// PPUEnabled must only be true while the subscription status is "active";
// the billing synchronizer is the sole writer of this invariant.
type BusinessModelState struct {
	CurrentPhase   string     `json:"currentPhase" firestore:"currentPhase"`
	PPUEnabled     bool       `json:"ppuEnabled" firestore:"ppuEnabled"`
	PPUActivatedAt *time.Time `json:"ppuActivatedAt,omitempty" firestore:"ppuActivatedAt,omitempty"`
}

// MonthlyUsage is denormalized coupon-redemption data for the current
// calendar month. It is written by the mobile backend and read-only here.
type MonthlyUsage struct {
	RedeemedCoupons int    `json:"redeemedCoupons" firestore:"redeemedCoupons"`
	TotalAmount     int64  `json:"totalAmount" firestore:"totalAmount"` // grosze
	Month           string `json:"month,omitempty" firestore:"month,omitempty"`
}

// Partner represents a registered local business and its billing state.
type Partner struct {
	ID                string             `json:"id" firestore:"-"`
	UserID            string             `json:"userId" firestore:"userId"` // owner's Firebase Auth UID
	CompanyName       string             `json:"companyName" firestore:"companyName"`
	NIP               string             `json:"nip" firestore:"nip"`
	BusinessType      string             `json:"businessType" firestore:"businessType"`
	Address           Address            `json:"address" firestore:"address"`
	Email             string             `json:"email" firestore:"email"`
	Phone             string             `json:"phone" firestore:"phone"`
	ContactPersonName string             `json:"contactPersonName" firestore:"contactPersonName"`
	Website           string             `json:"website,omitempty" firestore:"website,omitempty"`
	Description       string             `json:"description" firestore:"description"`
	Billing           BillingState       `json:"billing" firestore:"billing"`
	BusinessModel     BusinessModelState `json:"businessModel" firestore:"businessModel"`
	MonthlyUsage      *MonthlyUsage      `json:"monthlyUsage,omitempty" firestore:"monthlyUsage,omitempty"`
	IsActive          bool               `json:"isActive" firestore:"isActive"`
	CreatedAt         time.Time          `json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" firestore:"updatedAt"`
}
