package core

import (
	"time"

	"pedro-backend-go/internal/models"
)

// The billing lifecycle is a small explicit state machine instead of field
// assignments scattered across webhook branches:
//
//	NoSubscription -> SubscriptionActive <-> {Canceled, PastDue}
//
// No state is terminal; a canceled subscription can come back active via a
// later subscription update. Transitions are pure so re-delivered events
// produce byte-identical state.

// NextBillingState applies a subscription created/updated event.
// PPUEnabled is true iff the reported status is "active"; PPUActivatedAt is
// stamped on the inactive->active edge and preserved on re-delivery so the
// transition stays idempotent. The business-model phase is untouched here.
func NextBillingState(billing models.BillingState, businessModel models.BusinessModelState, ev *WebhookEvent, now time.Time) (models.BillingState, models.BusinessModelState) {
	active := ev.SubscriptionStatus == models.SubscriptionStatusActive

	next := models.BillingState{
		StripeCustomerID:   billing.StripeCustomerID,
		SubscriptionID:     ev.SubscriptionID,
		SubscriptionStatus: ev.SubscriptionStatus,
		CurrentPeriodStart: ev.PeriodStart,
		CurrentPeriodEnd:   ev.PeriodEnd,
	}

	nextModel := models.BusinessModelState{
		CurrentPhase: businessModel.CurrentPhase,
		PPUEnabled:   active,
	}
	if active {
		if businessModel.PPUEnabled && businessModel.PPUActivatedAt != nil {
			nextModel.PPUActivatedAt = businessModel.PPUActivatedAt
		} else {
			activatedAt := now
			nextModel.PPUActivatedAt = &activatedAt
		}
	}

	return next, nextModel
}

// CanceledBillingState applies a subscription deleted event: pay-per-use is
// off, the phase falls back to beta_free regardless of where it was, and
// the subscription reference is cleared.
func CanceledBillingState(billing models.BillingState) (models.BillingState, models.BusinessModelState) {
	next := models.BillingState{
		StripeCustomerID:   billing.StripeCustomerID,
		SubscriptionID:     "",
		SubscriptionStatus: models.SubscriptionStatusCanceled,
		CurrentPeriodStart: billing.CurrentPeriodStart,
		CurrentPeriodEnd:   billing.CurrentPeriodEnd,
	}
	nextModel := models.BusinessModelState{
		CurrentPhase:   models.PhaseBetaFree,
		PPUEnabled:     false,
		PPUActivatedAt: nil,
	}
	return next, nextModel
}
