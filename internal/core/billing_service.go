package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pedro-backend-go/internal/db"
	"pedro-backend-go/internal/models"
)

// Custom errors for the BillingService.
var (
	ErrWebhookSignature = errors.New("webhook signature verification failed")
	ErrStripeClient     = errors.New("payment provider operation failed")
	ErrNoStripeCustomer = errors.New("business has no payment provider customer")
)

// billingService implements the BillingService interface.
type billingService struct {
	partnerRepo  db.PartnerRepository
	paymentRepo  db.PaymentRepository
	gateway      PaymentGateway
	auditService AuditService
	logger       *zap.Logger
	now          func() time.Time
}

// NewBillingService creates a new BillingService instance.
func NewBillingService(
	partnerRepo db.PartnerRepository,
	paymentRepo db.PaymentRepository,
	gateway PaymentGateway,
	auditService AuditService,
	logger *zap.Logger,
) BillingService {
	return &billingService{
		partnerRepo:  partnerRepo,
		paymentRepo:  paymentRepo,
		gateway:      gateway,
		auditService: auditService,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateCheckoutSession starts a PPU subscription checkout for the caller's
// business, creating the Stripe customer lazily on first use.
func (s *billingService) CreateCheckoutSession(ctx context.Context, callerID, partnerID string) (*CheckoutSession, error) {
	partner, err := s.loadOwned(ctx, callerID, partnerID)
	if err != nil {
		return nil, err
	}

	customerID := partner.Billing.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, partner.Email, partner.CompanyName, map[string]string{
			"partnerId": partner.ID,
			"userId":    callerID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: create customer: %v", ErrStripeClient, err)
		}
		if err := s.partnerRepo.SetStripeCustomerID(ctx, partner.ID, customerID); err != nil {
			return nil, fmt.Errorf("failed to store Stripe customer on business '%s': %w", partner.ID, err)
		}
		s.logger.Info("Created Stripe customer",
			zap.String("partnerID", partner.ID), zap.String("customerID", customerID))
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, customerID, map[string]string{
		"partnerId": partner.ID,
		"userId":    callerID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrStripeClient, err)
	}
	return session, nil
}

// CreatePortalSession opens the Stripe billing portal for the caller's
// business. The business must already have a Stripe customer.
func (s *billingService) CreatePortalSession(ctx context.Context, callerID, partnerID string) (string, error) {
	partner, err := s.loadOwned(ctx, callerID, partnerID)
	if err != nil {
		return "", err
	}
	if partner.Billing.StripeCustomerID == "" {
		return "", fmt.Errorf("%w: business '%s'", ErrNoStripeCustomer, partnerID)
	}

	url, err := s.gateway.CreatePortalSession(ctx, partner.Billing.StripeCustomerID)
	if err != nil {
		return "", fmt.Errorf("%w: create portal session: %v", ErrStripeClient, err)
	}
	return url, nil
}

// HandleWebhook verifies and applies a Stripe event. Only a signature
// failure is returned as an error; everything else is acknowledged so
// Stripe does not retry events this service cannot act on.
func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Kind {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		s.handleSubscriptionChange(ctx, event)
	case EventSubscriptionDeleted:
		s.handleSubscriptionDeleted(ctx, event)
	case EventInvoicePaymentSucceeded:
		s.handleInvoice(ctx, event, models.PaymentStatusSucceeded)
	case EventInvoicePaymentFailed:
		s.handleInvoice(ctx, event, models.PaymentStatusFailed)
	default:
		s.logger.Info("Unhandled webhook event kind",
			zap.String("eventID", event.ID), zap.String("kind", event.Kind))
	}
	return nil
}

func (s *billingService) handleSubscriptionChange(ctx context.Context, event *WebhookEvent) {
	partner, ok := s.findByCustomer(ctx, event)
	if !ok {
		return
	}

	billing, businessModel := NextBillingState(partner.Billing, partner.BusinessModel, event, s.now().UTC())
	if err := s.partnerRepo.SetBillingState(ctx, partner.ID, billing, businessModel); err != nil {
		s.logger.Error("Failed to apply subscription change",
			zap.String("partnerID", partner.ID), zap.String("eventID", event.ID), zap.Error(err))
		return
	}

	s.auditSync(ctx, partner.ID, event)
	s.logger.Info("Updated partner subscription state",
		zap.String("partnerID", partner.ID),
		zap.String("status", event.SubscriptionStatus),
		zap.Bool("ppuEnabled", businessModel.PPUEnabled))
}

func (s *billingService) handleSubscriptionDeleted(ctx context.Context, event *WebhookEvent) {
	partner, ok := s.findByCustomer(ctx, event)
	if !ok {
		return
	}

	billing, businessModel := CanceledBillingState(partner.Billing)
	if err := s.partnerRepo.SetBillingState(ctx, partner.ID, billing, businessModel); err != nil {
		s.logger.Error("Failed to apply subscription deletion",
			zap.String("partnerID", partner.ID), zap.String("eventID", event.ID), zap.Error(err))
		return
	}

	s.auditSync(ctx, partner.ID, event)
	s.logger.Info("Cancelled partner subscription", zap.String("partnerID", partner.ID))
}

// handleInvoice logs the payment outcome and appends it to the per-partner
// payment history. History failures never bounce the webhook.
func (s *billingService) handleInvoice(ctx context.Context, event *WebhookEvent, paymentStatus string) {
	partner, ok := s.findByCustomer(ctx, event)
	if !ok {
		return
	}

	record := &models.PaymentRecord{
		InvoiceID:  event.InvoiceID,
		Amount:     event.Amount,
		Currency:   event.Currency,
		Status:     paymentStatus,
		OccurredAt: s.now().UTC(),
	}
	if _, err := s.paymentRepo.Create(ctx, partner.ID, record); err != nil {
		s.logger.Error("Failed to record payment",
			zap.String("partnerID", partner.ID), zap.String("invoiceID", event.InvoiceID), zap.Error(err))
	}

	s.logger.Info("Invoice event processed",
		zap.String("partnerID", partner.ID),
		zap.String("status", paymentStatus),
		zap.Int64("amount", event.Amount))
}

// findByCustomer resolves the event to a partner document. An unknown
// customer is logged and dropped; the event is still acknowledged because a
// retry would not make the partner appear.
func (s *billingService) findByCustomer(ctx context.Context, event *WebhookEvent) (*models.Partner, bool) {
	partner, err := s.partnerRepo.GetByStripeCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Warn("Webhook event for unknown Stripe customer, dropping",
				zap.String("eventID", event.ID), zap.String("customerID", event.CustomerID))
		} else {
			s.logger.Error("Failed to look up partner for webhook event",
				zap.String("eventID", event.ID), zap.String("customerID", event.CustomerID), zap.Error(err))
		}
		return nil, false
	}
	return partner, true
}

func (s *billingService) auditSync(ctx context.Context, partnerID string, event *WebhookEvent) {
	entry := models.AuditLog{
		Action:     models.AuditSubscriptionSync,
		TargetType: "PARTNER",
		TargetID:   partnerID,
		Timestamp:  s.now().UTC(),
		Details: map[string]interface{}{
			"eventId": event.ID,
			"kind":    event.Kind,
			"status":  event.SubscriptionStatus,
		},
	}
	if err := s.auditService.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to write audit log for subscription sync",
			zap.String("partnerID", partnerID), zap.Error(err))
	}
}

func (s *billingService) loadOwned(ctx context.Context, callerID, partnerID string) (*models.Partner, error) {
	partner, err := s.partnerRepo.GetByID(ctx, partnerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPartnerNotFound, partnerID)
		}
		return nil, fmt.Errorf("failed to load business '%s': %w", partnerID, err)
	}
	if partner.UserID != callerID {
		return nil, fmt.Errorf("%w: business '%s'", ErrForbiddenAccess, partnerID)
	}
	return partner, nil
}
