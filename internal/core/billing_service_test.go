package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedro-backend-go/internal/models"
)

func newBillingFixture(t *testing.T) (*billingService, *fakePartnerRepo, *fakePaymentRepo, *fakeGateway, *fakeAuditRepo) {
	t.Helper()
	partnerRepo := newFakePartnerRepo()
	paymentRepo := &fakePaymentRepo{}
	gateway := &fakeGateway{}
	auditRepo := &fakeAuditRepo{}
	svc := NewBillingService(partnerRepo, paymentRepo, gateway, NewAuditService(auditRepo), zap.NewNop()).(*billingService)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) }
	return svc, partnerRepo, paymentRepo, gateway, auditRepo
}

func seedPartner(repo *fakePartnerRepo, id, ownerID, customerID string) {
	repo.partners[id] = &models.Partner{
		ID:          id,
		UserID:      ownerID,
		CompanyName: "Pizzeria Romana",
		Email:       "owner@romana.pl",
		Billing:     models.BillingState{StripeCustomerID: customerID},
		BusinessModel: models.BusinessModelState{
			CurrentPhase: models.PhaseBetaFree,
		},
		IsActive: true,
	}
}

func TestCreateCheckoutSession_CreatesCustomerLazily(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "")
	gateway.createCustomerID = "cus_new"
	gateway.checkoutSession = &CheckoutSession{SessionID: "cs_1", URL: "https://checkout.stripe.com/cs_1"}

	session, err := svc.CreateCheckoutSession(context.Background(), "uid_1", "partner_1")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.SessionID)

	// The customer is persisted on the partner document for reuse.
	assert.Equal(t, "cus_new", partnerRepo.partners["partner_1"].Billing.StripeCustomerID)
	assert.Equal(t, []string{"owner@romana.pl"}, gateway.createdCustomers)
}

func TestCreateCheckoutSession_ReusesExistingCustomer(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_existing")
	gateway.checkoutSession = &CheckoutSession{SessionID: "cs_2", URL: "https://checkout.stripe.com/cs_2"}

	_, err := svc.CreateCheckoutSession(context.Background(), "uid_1", "partner_1")
	require.NoError(t, err)
	assert.Empty(t, gateway.createdCustomers)
}

func TestCreateCheckoutSession_RejectsNonOwner(t *testing.T) {
	svc, partnerRepo, _, _, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "")

	_, err := svc.CreateCheckoutSession(context.Background(), "uid_intruder", "partner_1")
	assert.ErrorIs(t, err, ErrForbiddenAccess)
}

func TestCreatePortalSession_RequiresExistingCustomer(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "")

	_, err := svc.CreatePortalSession(context.Background(), "uid_1", "partner_1")
	assert.ErrorIs(t, err, ErrNoStripeCustomer)

	seedPartner(partnerRepo, "partner_2", "uid_2", "cus_2")
	gateway.portalURL = "https://billing.stripe.com/p_1"
	url, err := svc.CreatePortalSession(context.Background(), "uid_2", "partner_2")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.com/p_1", url)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	svc, _, _, gateway, _ := newBillingFixture(t)
	gateway.constructErr = errBackendDown

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad-sig")
	assert.ErrorIs(t, err, ErrWebhookSignature)
}

func TestHandleWebhook_SubscriptionActivated(t *testing.T) {
	svc, partnerRepo, _, gateway, auditRepo := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_1")
	gateway.event = &WebhookEvent{
		ID:                 "evt_1",
		Kind:               EventSubscriptionUpdated,
		CustomerID:         "cus_1",
		SubscriptionID:     "sub_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
	}

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	partner := partnerRepo.partners["partner_1"]
	assert.True(t, partner.BusinessModel.PPUEnabled)
	assert.Equal(t, "sub_1", partner.Billing.SubscriptionID)
	assert.Equal(t, models.SubscriptionStatusActive, partner.Billing.SubscriptionStatus)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditSubscriptionSync, auditRepo.entries[0].Action)
}

func TestHandleWebhook_RedeliveryWritesIdenticalState(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_1")
	gateway.event = &WebhookEvent{
		ID:                 "evt_1",
		Kind:               EventSubscriptionCreated,
		CustomerID:         "cus_1",
		SubscriptionID:     "sub_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
	}

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	// Redelivery with the clock advanced must not change the document.
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC) }
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	require.Len(t, partnerRepo.billingWrites, 2)
	assert.Equal(t, partnerRepo.billingWrites[0].billing, partnerRepo.billingWrites[1].billing)
	assert.Equal(t, partnerRepo.billingWrites[0].businessModel, partnerRepo.billingWrites[1].businessModel)
}

func TestHandleWebhook_SubscriptionDeleted(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_1")
	activatedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	partnerRepo.partners["partner_1"].BusinessModel = models.BusinessModelState{
		CurrentPhase:   models.PhasePayPerUse,
		PPUEnabled:     true,
		PPUActivatedAt: &activatedAt,
	}
	gateway.event = &WebhookEvent{
		ID:         "evt_2",
		Kind:       EventSubscriptionDeleted,
		CustomerID: "cus_1",
	}

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	partner := partnerRepo.partners["partner_1"]
	assert.False(t, partner.BusinessModel.PPUEnabled)
	assert.Equal(t, models.PhaseBetaFree, partner.BusinessModel.CurrentPhase)
	assert.Empty(t, partner.Billing.SubscriptionID)
	assert.Equal(t, models.SubscriptionStatusCanceled, partner.Billing.SubscriptionStatus)
	// The customer reference survives for future reactivation.
	assert.Equal(t, "cus_1", partner.Billing.StripeCustomerID)
}

func TestHandleWebhook_UnknownCustomerIsDropped(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	gateway.event = &WebhookEvent{
		ID:                 "evt_3",
		Kind:               EventSubscriptionUpdated,
		CustomerID:         "cus_ghost",
		SubscriptionStatus: models.SubscriptionStatusActive,
	}

	// Acknowledged without error and with no state written.
	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, partnerRepo.billingWrites)
}

func TestHandleWebhook_UnknownKindIsAcknowledged(t *testing.T) {
	svc, partnerRepo, _, gateway, _ := newBillingFixture(t)
	gateway.event = &WebhookEvent{ID: "evt_4", Kind: "customer.created", CustomerID: "cus_1"}

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, partnerRepo.billingWrites)
}

func TestHandleWebhook_InvoiceAppendedToHistory(t *testing.T) {
	svc, partnerRepo, paymentRepo, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_1")
	gateway.event = &WebhookEvent{
		ID:         "evt_5",
		Kind:       EventInvoicePaymentSucceeded,
		CustomerID: "cus_1",
		InvoiceID:  "in_1",
		Amount:     12900,
		Currency:   "pln",
	}

	require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	require.Len(t, paymentRepo.payments, 1)
	payment := paymentRepo.payments[0]
	assert.Equal(t, "partner_1", payment.partnerID)
	assert.Equal(t, "in_1", payment.record.InvoiceID)
	assert.Equal(t, int64(12900), payment.record.Amount)
	assert.Equal(t, models.PaymentStatusSucceeded, payment.record.Status)
}

func TestHandleWebhook_InvoiceFailureStillAcknowledged(t *testing.T) {
	svc, partnerRepo, paymentRepo, gateway, _ := newBillingFixture(t)
	seedPartner(partnerRepo, "partner_1", "uid_1", "cus_1")
	paymentRepo.createErr = errBackendDown
	gateway.event = &WebhookEvent{
		ID:         "evt_6",
		Kind:       EventInvoicePaymentFailed,
		CustomerID: "cus_1",
		InvoiceID:  "in_2",
	}

	assert.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
}
